package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/oid"
)

func TestDispatchTraceWithDefaultsFillsMissingHooks(t *testing.T) {
	called := false
	custom := &DispatchTrace{Error: func(error) { called = true }}
	custom.WithDefaults()

	require.NotNil(t, custom.ReadComplete)
	require.NotNil(t, custom.VarBindResolved)
	custom.ReadComplete(nil, nil)
	custom.VarBindResolved(oid.MustParse("1.1"), "", true)

	custom.Error(nil)
	assert.True(t, called, "explicitly set hook must survive the merge")
}

func TestRegistryTraceWithDefaultsFillsMissingHooks(t *testing.T) {
	rt := &RegistryTrace{}
	rt.WithDefaults()
	require.NotNil(t, rt.Registered)
	require.NotNil(t, rt.Unregistered)
	require.NotNil(t, rt.Rejected)
	rt.Registered("x", oid.MustParse("1.1"), 1)
}

func TestSetTraceWithDefaultsFillsMissingHooks(t *testing.T) {
	st := &SetTrace{}
	st.WithDefaults()
	require.NotNil(t, st.PhaseEntered)
	require.NotNil(t, st.PhaseFailed)
	require.NotNil(t, st.Rollback)
	st.PhaseEntered("RESERVE1")
}

func TestDiagnosticVariantsHaveAllHooksSet(t *testing.T) {
	assert.NotNil(t, DiagnosticDispatchTrace.ReadComplete)
	assert.NotNil(t, DiagnosticDispatchTrace.WriteComplete)
	assert.NotNil(t, DiagnosticRegistryTrace.Registered)
	assert.NotNil(t, DiagnosticSetTrace.PhaseEntered)
}

func TestNoOpVariantsDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		NoOpDispatchTrace.ReadComplete(nil, nil)
		NoOpDispatchTrace.Error(nil)
		NoOpRegistryTrace.Rejected("", nil, nil)
		NoOpSetTrace.Rollback(nil)
	})
}
