package varbind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/ber"
	"github.com/damianoneill/priotagent/oid"
)

func TestTypedValueEncodeDecodeRoundTrip(t *testing.T) {
	cases := []TypedValue{
		IntegerValue(-12345),
		OctetStringValue([]byte("hello")),
		OIDValue(oid.MustParse("1.3.6.1.2.1.1.1")),
		IPAddressValue([4]byte{192, 168, 0, 1}),
		Counter32Value(42),
		Gauge32Value(7),
		TimeTicksValue(123456),
		Counter64Value(0xFFFFFFFFFF),
		OpaqueFloatValue(1.5),
		OpaqueDoubleValue(2.5),
		OpaqueInt64Value(-99),
		OpaqueUnsigned64Value(99),
		NullValue(),
		ExceptionValue(ber.TagNoSuchInstance),
	}
	for _, tv := range cases {
		buf := make([]byte, 64)
		tail, ok := tv.Encode(buf)
		require.True(t, ok, "%v", tv)
		written := buf[:len(buf)-len(tail)]

		got, rest, err := DecodeTypedValue(written)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, tv.Type, got.Type)
		assert.Equal(t, tv.Value, got.Value)
	}
}

func TestTypedValueString(t *testing.T) {
	assert.Equal(t, "42", Counter32Value(42).String())
	assert.Equal(t, "hello", OctetStringValue([]byte("hello")).String())
	assert.Equal(t, "No Such Instance", ExceptionValue(ber.TagNoSuchInstance).String())
}

func TestTypedValueIsException(t *testing.T) {
	assert.True(t, ExceptionValue(ber.TagEndOfMibView).IsException())
	assert.False(t, IntegerValue(1).IsException())
}

func TestVBEncode(t *testing.T) {
	vb := &VB{Name: oid.MustParse("1.3.6.1.2.1.1.1.0"), Value: OctetStringValue([]byte("sysDescr"))}
	encoded := vb.Encode()

	gotOID, tail, err := oid.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, vb.Name, gotOID)

	gotVal, rest, err := DecodeTypedValue(tail)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, vb.Value, gotVal)
}

func TestVBEncodeLargeValueFallsBackToHeap(t *testing.T) {
	big := make([]byte, 500)
	for i := range big {
		big[i] = byte(i)
	}
	vb := &VB{Name: oid.MustParse("1.3.6.1.2.1.1.1.0"), Value: OctetStringValue(big)}
	encoded := vb.Encode()

	_, tail, err := oid.Decode(encoded)
	require.NoError(t, err)
	gotVal, _, err := DecodeTypedValue(tail)
	require.NoError(t, err)
	assert.Equal(t, big, gotVal.Value.([]byte))
}

func TestVBFreeData(t *testing.T) {
	freed := false
	vb := &VB{Data: 7, DataFree: func(any) { freed = true }}
	vb.FreeData()
	assert.True(t, freed)
	assert.Nil(t, vb.Data)
	assert.Nil(t, vb.DataFree)
}

func TestVarListAppendAndIndex(t *testing.T) {
	a := &VB{Name: oid.MustParse("1.1")}
	b := &VB{Name: oid.MustParse("1.2")}
	l := NewVarList(a, b)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 1, a.Index)
	assert.Equal(t, 2, b.Index)
	assert.Same(t, a, l.First())
	assert.Same(t, b, l.Next(a))
	assert.Nil(t, l.Next(b))
	assert.Equal(t, []*VB{a, b}, l.Slice())
}

func TestVarListForEachStopsEarly(t *testing.T) {
	a := &VB{Name: oid.MustParse("1.1")}
	b := &VB{Name: oid.MustParse("1.2")}
	c := &VB{Name: oid.MustParse("1.3")}
	l := NewVarList(a, b, c)

	var seen []*VB
	l.ForEach(func(vb *VB) bool {
		seen = append(seen, vb)
		return vb != b
	})
	assert.Equal(t, []*VB{a, b}, seen)
}
