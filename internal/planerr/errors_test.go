package planerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"structural", Structuralf("cycle at %s", "a"), ErrStructural, "structural"},
		{"configuration", Configurationf("no replicas"), ErrConfiguration, "configuration"},
		{"not found", NotFoundf("no destination"), ErrNotFound, "not_found"},
		{"identifier", Identifierf("unknown machine %q", "m9"), ErrIdentifier, "identifier"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestWithStepAndChain_SurviveFmtWrapping(t *testing.T) {
	base := Configurationf("empty replica set")
	err := WithChain(WithStep(base, "update-path"), "stage0")
	wrapped := fmt.Errorf("init failed: %w", err)

	require.ErrorIs(t, wrapped, ErrConfiguration)
	var pe *Error
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "update-path", pe.Step)
	assert.Equal(t, "stage0", pe.Chain)
	assert.Contains(t, wrapped.Error(), "[step=update-path] [chain=stage0]")

	// The first recorded step wins.
	again := WithStep(err, "load-path")
	require.True(t, errors.As(again, &pe))
	assert.Equal(t, "update-path", pe.Step)
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrIdentifier, cause, "resolving %s", "node0")
	assert.ErrorIs(t, err, ErrIdentifier)
	assert.ErrorIs(t, err, cause)

	classified := Structuralf("x")
	assert.Same(t, classified, Wrap(ErrIdentifier, classified, "ignored"))
	assert.NoError(t, Wrap(ErrIdentifier, nil, "nothing"))
	assert.Equal(t, "unknown", KindOf(cause))
}
