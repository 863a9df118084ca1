package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/oid"
)

func noopChain(name string) *handler.Chain {
	return handler.NewChain(handler.NewNode(name, func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
		return nil
	}))
}

func TestRegisterAndFindExactMatch(t *testing.T) {
	r := New()
	reg := &Registration{
		Name: "sysDescr", Root: oid.MustParse("1.3.6.1.2.1.1.1"),
		Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("sysDescr"),
	}
	require.NoError(t, r.Register(reg))

	found, ok := r.Find("", oid.MustParse("1.3.6.1.2.1.1.1.0"), handler.ModeGet)
	require.True(t, ok)
	assert.Equal(t, "sysDescr", found.Name)
}

func TestDuplicatePriorityRejected(t *testing.T) {
	r := New()
	root := oid.MustParse("1.3.6.1.4.1.9999")
	require.NoError(t, r.Register(&Registration{Name: "h1", Root: root, Priority: 10, Modes: handler.ReadOnlyModes, Chain: noopChain("h1")}))
	err := r.Register(&Registration{Name: "h1dup", Root: root, Priority: 10, Modes: handler.ReadOnlyModes, Chain: noopChain("h1dup")})
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestPriorityOrderingPrefersLowestAcceptingMode(t *testing.T) {
	r := New()
	root := oid.MustParse("1.3.6.1.4.1.1")
	require.NoError(t, r.Register(&Registration{Name: "high", Root: root, Priority: 10, Modes: handler.ReadOnlyModes, Chain: noopChain("high")}))
	require.NoError(t, r.Register(&Registration{Name: "low", Root: root, Priority: 5, Modes: handler.ReadOnlyModes, Chain: noopChain("low")}))

	found, ok := r.Find("", root, handler.ModeGet)
	require.True(t, ok)
	assert.Equal(t, "low", found.Name, "lowest priority value wins")
}

func TestUnregisterRestoresPrecedence(t *testing.T) {
	r := New()
	root := oid.MustParse("1.3.6.1.4.1.2")
	require.NoError(t, r.Register(&Registration{Name: "h1", Root: root, Priority: 10, Modes: handler.ReadOnlyModes, Chain: noopChain("h1")}))
	require.NoError(t, r.Register(&Registration{Name: "h2", Root: root, Priority: 5, Modes: handler.ReadOnlyModes, Chain: noopChain("h2")}))

	found, _ := r.Find("", root, handler.ModeGet)
	assert.Equal(t, "h2", found.Name)

	require.NoError(t, r.Unregister("", root, 5))
	found, ok := r.Find("", root, handler.ModeGet)
	require.True(t, ok)
	assert.Equal(t, "h1", found.Name)
}

func TestUnregisterUnknownReturnsError(t *testing.T) {
	r := New()
	err := r.Unregister("", oid.MustParse("1.2.3"), 1)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestFindPrefersLongestPrefix(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&Registration{Name: "outer", Root: oid.MustParse("1.3.6.1.4.1"), Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("outer")}))
	require.NoError(t, r.Register(&Registration{Name: "inner", Root: oid.MustParse("1.3.6.1.4.1.5.1"), Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("inner")}))

	found, ok := r.Find("", oid.MustParse("1.3.6.1.4.1.5.1.0"), handler.ModeGet)
	require.True(t, ok)
	assert.Equal(t, "inner", found.Name)
}

func TestFindNextReturnsSuccessor(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&Registration{Name: "a", Root: oid.MustParse("1.1"), Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("a")}))
	require.NoError(t, r.Register(&Registration{Name: "b", Root: oid.MustParse("1.2"), Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("b")}))

	found, ok := r.FindNext("", oid.MustParse("1.1"), handler.ModeGetNext)
	require.True(t, ok)
	assert.Equal(t, "b", found.Name)
}

func TestFindNextExhaustedReturnsFalse(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&Registration{Name: "a", Root: oid.MustParse("1.1"), Priority: 1, Modes: handler.ReadOnlyModes, Chain: noopChain("a")}))
	_, ok := r.FindNext("", oid.MustParse("1.1"), handler.ModeGetNext)
	assert.False(t, ok)
}

func TestRangeRegistrationExpandsAndClonesChain(t *testing.T) {
	r := New()
	cloned := 0
	chain := handler.NewChain(handler.NewNode("row", func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
		return nil
	}))
	chain.Head().MyVoid = 0
	chain.Head().CloneData = func(v interface{}) interface{} { cloned++; return v }
	chain.Head().FreeData = func(interface{}) {}

	reg := &Registration{
		Name: "row", Root: oid.MustParse("1.3.6.1.4.1.100.1"),
		RangeSubid: 8, RangeUpperBound: 3,
		Priority: 1, Modes: handler.ReadOnlyModes, Chain: chain,
	}
	require.NoError(t, r.Register(reg))
	assert.Equal(t, 2, cloned, "two additional clones made for sub-id values 2 and 3")

	for _, v := range []uint32{1, 2, 3} {
		root := oid.MustParse("1.3.6.1.4.1.100.1")
		root[7] = v
		_, ok := r.Find("", root, handler.ModeGet)
		assert.True(t, ok, "sub-id value %d should be covered", v)
	}
}

func TestContextsAreIndependent(t *testing.T) {
	r := New()
	root := oid.MustParse("1.1")
	require.NoError(t, r.Register(&Registration{Name: "a", Root: root, Priority: 1, Context: "ctxA", Modes: handler.ReadOnlyModes, Chain: noopChain("a")}))

	_, ok := r.Find("ctxB", root, handler.ModeGet)
	assert.False(t, ok)
	_, ok = r.Find("ctxA", root, handler.ModeGet)
	assert.True(t, ok)
}
