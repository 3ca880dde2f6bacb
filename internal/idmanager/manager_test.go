package idmanager

import (
	"testing"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoMachines() *config.Resource {
	return &config.Resource{Machines: []*config.Machine{
		{Name: "node0", DeviceType: "gpu", DeviceCount: 4},
		{Name: "node1", DeviceType: "gpu", DeviceCount: 2},
	}}
}

func TestInit(t *testing.T) {
	t.Run("assigns machine ids in declaration order", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Init(twoMachines()))
		assert.True(t, m.Initialized())
		assert.Equal(t, 2, m.MachineCount())

		id, err := m.MachineID("node1")
		require.NoError(t, err)
		assert.Equal(t, MachineID(1), id)
	})

	t.Run("second init fails", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Init(twoMachines()))
		assert.ErrorIs(t, m.Init(twoMachines()), planerr.ErrIdentifier)
	})

	t.Run("invalid specifications", func(t *testing.T) {
		testCases := []struct {
			name string
			res  *config.Resource
			msg  string
		}{
			{"nil", nil, "no machines"},
			{"empty", &config.Resource{}, "no machines"},
			{"duplicate", &config.Resource{Machines: []*config.Machine{
				{Name: "a", DeviceType: "gpu", DeviceCount: 1},
				{Name: "a", DeviceType: "gpu", DeviceCount: 1},
			}}, "duplicate machine"},
			{"zero devices", &config.Resource{Machines: []*config.Machine{
				{Name: "a", DeviceType: "gpu", DeviceCount: 0},
			}}, "declares 0 devices"},
			{"missing type", &config.Resource{Machines: []*config.Machine{
				{Name: "a", DeviceCount: 1},
			}}, "no device type"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				err := New().Init(tc.res)
				require.ErrorIs(t, err, planerr.ErrIdentifier)
				assert.ErrorContains(t, err, tc.msg)
			})
		}
	})
}

func TestResolveDevices(t *testing.T) {
	m := New()
	_, err := m.ResolveDevices([]string{"node0.gpu[0]"})
	require.ErrorIs(t, err, planerr.ErrIdentifier, "resolving before Init must fail")

	require.NoError(t, m.Init(twoMachines()))

	devs, err := m.ResolveDevices([]string{"node1.gpu[1]", "node0.gpu"})
	require.NoError(t, err)
	require.Len(t, devs, 5)
	assert.Equal(t, "node1.gpu[1]", devs[0].String())
	assert.Equal(t, DeviceID(MaxDevicesPerMachine+1), devs[0].ID)
	for i := 0; i < 4; i++ {
		assert.Equal(t, i, devs[i+1].Local)
		assert.Equal(t, MachineID(0), devs[i+1].Machine)
	}

	for _, raw := range []string{"node9.gpu[0]", "node0.cpu[0]", "node1.gpu[2]", "node0"} {
		_, err := m.ResolveDevices([]string{raw})
		assert.ErrorIs(t, err, planerr.ErrIdentifier, raw)
	}
}

func TestNewTaskID(t *testing.T) {
	m := New()
	assert.Panics(t, func() { m.NewTaskID(Device{}) })

	require.NoError(t, m.Init(twoMachines()))
	devs, err := m.ResolveDevices([]string{"node1.gpu[1]"})
	require.NoError(t, err)

	first := m.NewTaskID(devs[0])
	second := m.NewTaskID(devs[0])
	assert.Equal(t, MachineID(1), first.Machine())
	assert.Equal(t, 1, first.Local())
	assert.Equal(t, uint64(0), first.Seq())
	assert.Equal(t, uint64(1), second.Seq())
	assert.Equal(t, "m1/d1/1", second.String())
}
