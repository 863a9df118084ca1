package oid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	o, err := Parse("1.3.6.1.4.1.8072")
	require.NoError(t, err)
	assert.Equal(t, OID{1, 3, 6, 1, 4, 1, 8072}, o)
	assert.Equal(t, "1.3.6.1.4.1.8072", o.String())
}

func TestParseTrimsDots(t *testing.T) {
	o, err := Parse(".1.3.6.")
	require.NoError(t, err)
	assert.Equal(t, OID{1, 3, 6}, o)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse("...")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseBadComponent(t *testing.T) {
	_, err := Parse("1.3.x.1")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	a := MustParse("1.3.6.1")
	b := MustParse("1.3.6.2")
	c := MustParse("1.3.6.1")
	d := MustParse("1.3.6.1.1")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(c))
	assert.Equal(t, -1, a.Compare(d), "shorter prefix sorts before longer")
	assert.Equal(t, 1, d.Compare(a))
}

func TestIsPrefix(t *testing.T) {
	root := MustParse("1.3.6.1.4.1.8072")
	child := MustParse("1.3.6.1.4.1.8072.3.3.7")
	assert.True(t, root.IsPrefix(child))
	assert.True(t, root.IsPrefix(root))
	assert.False(t, child.IsPrefix(root))
	assert.True(t, root.IsStrictPrefix(child))
	assert.False(t, root.IsStrictPrefix(root))
}

func TestAppendDoesNotMutate(t *testing.T) {
	base := MustParse("1.3.6.1")
	child := base.Append(1, 0)
	assert.Equal(t, OID{1, 3, 6, 1}, base)
	assert.Equal(t, OID{1, 3, 6, 1, 1, 0}, child)
}

func TestTrimPrefix(t *testing.T) {
	col := MustParse("1.3.6.1.2.1.1.1")
	inst := MustParse("1.3.6.1.2.1.1.1.0")
	suffix, ok := inst.TrimPrefix(col)
	require.True(t, ok)
	assert.Equal(t, OID{0}, suffix)

	_, ok = col.TrimPrefix(inst)
	assert.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	a := MustParse("1.3.6.1")
	b := a.Copy()
	b[0] = 99
	assert.Equal(t, uint32(1), a[0])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	o := MustParse("1.3.6.1.4.1.8072.3.3.7")
	buf := make([]byte, 32)
	tail, ok := Encode(buf, o)
	require.True(t, ok)
	written := buf[:len(buf)-len(tail)]

	got, rest, err := Decode(written)
	require.NoError(t, err)
	assert.Equal(t, o, got)
	assert.Empty(t, rest)
}
