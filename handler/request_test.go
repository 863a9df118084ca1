package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/varbind"
)

func TestRequestParentDataSetGetRemove(t *testing.T) {
	req := NewRequest(&varbind.VB{Name: oid.MustParse("1.1")}, 1, &RequestInfo{Mode: ModeGet})

	freed := false
	req.SetParentData("row", 42, func(v interface{}) { freed = true })

	v, ok := req.ParentData("row")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	req.RemoveParentData("row")
	assert.True(t, freed)
	_, ok = req.ParentData("row")
	assert.False(t, ok)
}

func TestRequestParentDataDuplicateIgnored(t *testing.T) {
	req := NewRequest(&varbind.VB{}, 1, &RequestInfo{})
	req.SetParentData("row", 1, nil)
	req.SetParentData("row", 2, nil)

	v, ok := req.ParentData("row")
	require.True(t, ok)
	assert.Equal(t, 1, v, "duplicate set must not overwrite")
}

func TestRequestDestroyFreesAllEntries(t *testing.T) {
	req := NewRequest(&varbind.VB{}, 1, &RequestInfo{})
	var freedNames []string
	req.SetParentData("a", 1, func(interface{}) { freedNames = append(freedNames, "a") })
	req.SetParentData("b", 2, func(interface{}) { freedNames = append(freedNames, "b") })

	req.Destroy()
	assert.ElementsMatch(t, []string{"a", "b"}, freedNames)
}

func TestModeSetAccepts(t *testing.T) {
	assert.True(t, ReadOnlyModes.Accepts(ModeGet))
	assert.True(t, ReadOnlyModes.Accepts(ModeGetNext))
	assert.False(t, ReadOnlyModes.Accepts(ModeSetReserve1))
	assert.True(t, ReadWriteModes.Accepts(ModeSetCommit))
}

func TestModeIsSetPhase(t *testing.T) {
	assert.False(t, ModeGet.IsSetPhase())
	assert.True(t, ModeSetReserve1.IsSetPhase())
	assert.True(t, ModeSetUndo.IsSetPhase())
}
