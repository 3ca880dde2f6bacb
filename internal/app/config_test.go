package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_AppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(Config{JobPath: "job.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SchedulerEvent, "scheduler defaults apply only when a URL is set")

	cfg, err = NewConfig(Config{JobPath: "job.hcl", SchedulerURL: "http://localhost:3000"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedulerNamespace, cfg.SchedulerNamespace)
	assert.Equal(t, DefaultSchedulerEvent, cfg.SchedulerEvent)
	assert.Equal(t, DefaultSchedulerTimeout, cfg.SchedulerTimeout)
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing job path", cfg: Config{}, wantErr: "JobPath is a required"},
		{name: "bad format", cfg: Config{JobPath: "j", LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad level", cfg: Config{JobPath: "j", LogLevel: "trace"}, wantErr: "invalid log level"},
		{name: "negative port", cfg: Config{JobPath: "j", HealthcheckPort: -1}, wantErr: "invalid healthcheck port"},
		{name: "port too large", cfg: Config{JobPath: "j", HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
		{name: "serve without port", cfg: Config{JobPath: "j", Serve: true}, wantErr: "serve mode requires"},
		{name: "negative timeout", cfg: Config{JobPath: "j", SchedulerTimeout: -time.Second}, wantErr: "invalid scheduler timeout"},
		{name: "url without host", cfg: Config{JobPath: "j", SchedulerURL: "localhost"}, wantErr: "must include scheme and host"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
