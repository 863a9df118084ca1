// Package varbind implements the variable binding: the (OID, typed value)
// pair that carries data in and out of every PDU, plus the singly linked
// VarList that chains them together the way the original C agent core does.
package varbind

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/ber"
	"github.com/damianoneill/priotagent/oid"
)

// TypedValue encapsulates a decoded variable's BER tag and its Go
// representation, mirroring the teacher's TypedValue (damianoneill-net/v2
// /snmp/types.go) generalized from an SNMP client's read-only value set to
// the full read/write value set an agent must also encode.
type TypedValue struct {
	Type  ber.Tag
	Value interface{}
}

// constructors, one per concrete kind this protocol carries.

func IntegerValue(v int64) TypedValue  { return TypedValue{Type: ber.TagInteger, Value: v} }
func OctetStringValue(v []byte) TypedValue {
	return TypedValue{Type: ber.TagOctetString, Value: append([]byte(nil), v...)}
}
func OIDValue(v oid.OID) TypedValue { return TypedValue{Type: ber.TagObjectId, Value: v} }
func BitStringValue(v []byte) TypedValue {
	return TypedValue{Type: ber.TagBitString, Value: append([]byte(nil), v...)}
}
func IPAddressValue(v [4]byte) TypedValue { return TypedValue{Type: ber.TagIPAddress, Value: v} }
func Counter32Value(v uint32) TypedValue  { return TypedValue{Type: ber.TagCounter32, Value: v} }
func Gauge32Value(v uint32) TypedValue    { return TypedValue{Type: ber.TagGauge32, Value: v} }
func TimeTicksValue(v uint32) TypedValue  { return TypedValue{Type: ber.TagTimeTicks, Value: v} }
func Counter64Value(v uint64) TypedValue  { return TypedValue{Type: ber.TagCounter64, Value: v} }
func OpaqueValue(v []byte) TypedValue {
	return TypedValue{Type: ber.TagOpaque, Value: append([]byte(nil), v...)}
}
func OpaqueFloatValue(v float32) TypedValue  { return TypedValue{Type: ber.OpaqueFloat, Value: v} }
func OpaqueDoubleValue(v float64) TypedValue { return TypedValue{Type: ber.OpaqueDouble, Value: v} }
func OpaqueInt64Value(v int64) TypedValue    { return TypedValue{Type: ber.OpaqueInt64, Value: v} }
func OpaqueUnsigned64Value(v uint64) TypedValue {
	return TypedValue{Type: ber.OpaqueUnsigned64, Value: v}
}
func NullValue() TypedValue { return TypedValue{Type: ber.TagNull} }

// ExceptionValue builds the value that stands in for a variable binding's
// value when the registered handler cannot supply one. tag must be one of
// ber.TagNoSuchObject, ber.TagNoSuchInstance, ber.TagEndOfMibView.
func ExceptionValue(tag ber.Tag) TypedValue { return TypedValue{Type: tag} }

// IsException reports whether tv stands for one of the three exception
// values rather than carrying real data.
func (tv TypedValue) IsException() bool { return ber.IsException(tv.Type) }

// String renders tv for logging/display, matching the register of the
// teacher's TypedValue.String (damianoneill-net/v2/snmp/types.go) extended
// with the write-side kinds the client never needed to print.
func (tv TypedValue) String() string {
	switch tv.Type {
	case ber.TagInteger:
		return strconv.FormatInt(tv.Value.(int64), 10)
	case ber.TagOctetString, ber.TagOpaque:
		return string(tv.Value.([]byte))
	case ber.TagBitString:
		return fmt.Sprintf("% x", tv.Value.([]byte))
	case ber.TagObjectId:
		return tv.Value.(oid.OID).String()
	case ber.TagIPAddress:
		addr := tv.Value.([4]byte)
		parts := make([]string, 4)
		for i, b := range addr {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ".")
	case ber.TagCounter32, ber.TagGauge32:
		return strconv.FormatUint(uint64(tv.Value.(uint32)), 10)
	case ber.TagTimeTicks:
		return (time.Duration(tv.Value.(uint32)) * 10 * time.Millisecond).String()
	case ber.TagCounter64, ber.OpaqueUnsigned64:
		return strconv.FormatUint(tv.Value.(uint64), 10)
	case ber.OpaqueInt64:
		return strconv.FormatInt(tv.Value.(int64), 10)
	case ber.OpaqueFloat:
		return strconv.FormatFloat(float64(tv.Value.(float32)), 'g', -1, 32)
	case ber.OpaqueDouble:
		return strconv.FormatFloat(tv.Value.(float64), 'g', -1, 64)
	case ber.TagNull:
		return "<null>"
	case ber.TagNoSuchObject:
		return "No Such Object"
	case ber.TagNoSuchInstance:
		return "No Such Instance"
	case ber.TagEndOfMibView:
		return "End of MIB View"
	}
	return fmt.Sprintf("unrecognised value type %#x", byte(tv.Type))
}

// Int returns the value as an int64; Type must be one of the integer-family
// tags.
func (tv TypedValue) Int() int64 {
	switch tv.Type { //nolint: exhaustive
	case ber.TagInteger, ber.OpaqueInt64:
		return tv.Value.(int64)
	case ber.TagCounter32, ber.TagGauge32, ber.TagTimeTicks:
		return int64(tv.Value.(uint32))
	case ber.TagCounter64, ber.OpaqueUnsigned64:
		return int64(tv.Value.(uint64))
	}
	panic(fmt.Errorf("varbind: non-integer data type %#x", byte(tv.Type)))
}

// Encode forward-encodes tv's tag and value into buf.
func (tv TypedValue) Encode(buf []byte) ([]byte, bool) {
	switch tv.Type {
	case ber.TagInteger:
		return ber.BuildInteger(buf, ber.TagInteger, tv.Value.(int64))
	case ber.TagOctetString, ber.TagOpaque:
		return ber.BuildOctetString(buf, tv.Type, tv.Value.([]byte))
	case ber.TagBitString:
		return ber.BuildBitString(buf, tv.Value.([]byte))
	case ber.TagObjectId:
		return ber.BuildOID(buf, []uint32(tv.Value.(oid.OID)))
	case ber.TagIPAddress:
		return ber.BuildIPAddress(buf, tv.Value.([4]byte))
	case ber.TagCounter32, ber.TagGauge32, ber.TagTimeTicks:
		return ber.BuildUnsigned(buf, tv.Type, uint64(tv.Value.(uint32)))
	case ber.TagCounter64:
		return ber.BuildCounter64(buf, ber.Counter64FromUint64(tv.Value.(uint64)))
	case ber.OpaqueUnsigned64:
		return ber.BuildOpaqueUnsigned64(buf, tv.Value.(uint64))
	case ber.OpaqueInt64:
		return ber.BuildOpaqueInt64(buf, tv.Value.(int64))
	case ber.OpaqueFloat:
		return ber.BuildOpaqueFloat(buf, tv.Value.(float32))
	case ber.OpaqueDouble:
		return ber.BuildOpaqueDouble(buf, tv.Value.(float64))
	case ber.TagNull:
		return ber.BuildNull(buf)
	case ber.TagNoSuchObject, ber.TagNoSuchInstance, ber.TagEndOfMibView:
		return ber.BuildException(buf, tv.Type)
	}
	return nil, false
}

// DecodeTypedValue decodes a single tagged value, dispatching on its wire
// tag the way the teacher's unmarshalVariable does (damianoneill-net/v2
// /snmp/types.go), generalized to also decode the write-side opaque kinds.
func DecodeTypedValue(buf []byte) (value TypedValue, tail []byte, err error) {
	hdr, _, err := ber.ParseHeader(buf)
	if err != nil {
		return TypedValue{}, nil, err
	}
	switch hdr.Type {
	case ber.TagInteger:
		v, _, t, err := ber.ParseInteger(buf, ber.TagInteger)
		return IntegerValue(v), t, err
	case ber.TagOctetString:
		v, _, t, err := ber.ParseOctetString(buf, ber.TagOctetString)
		return OctetStringValue(v), t, err
	case ber.TagOpaque:
		return decodeOpaque(buf)
	case ber.TagBitString:
		v, t, err := ber.ParseBitString(buf)
		return BitStringValue(v), t, err
	case ber.TagObjectId:
		v, t, err := ber.ParseOID(buf)
		return OIDValue(oid.OID(v)), t, err
	case ber.TagIPAddress:
		v, t, err := ber.ParseIPAddress(buf)
		return IPAddressValue(v), t, err
	case ber.TagCounter32:
		v, _, t, err := ber.ParseUnsigned(buf, ber.TagCounter32)
		return Counter32Value(uint32(v)), t, err
	case ber.TagGauge32:
		v, _, t, err := ber.ParseUnsigned(buf, ber.TagGauge32)
		return Gauge32Value(uint32(v)), t, err
	case ber.TagTimeTicks:
		v, _, t, err := ber.ParseUnsigned(buf, ber.TagTimeTicks)
		return TimeTicksValue(uint32(v)), t, err
	case ber.TagCounter64:
		v, t, err := ber.ParseCounter64(buf)
		return Counter64Value(v.Value()), t, err
	case ber.TagNull:
		t, err := ber.ParseNull(buf)
		return NullValue(), t, err
	case ber.TagNoSuchObject, ber.TagNoSuchInstance, ber.TagEndOfMibView:
		tag, t, err := ber.ParseException(buf)
		return ExceptionValue(tag), t, err
	}
	return TypedValue{}, nil, errors.Wrapf(ber.ErrBadTag, "varbind: undecodable tag %#x", hdr.Type)
}

// decodeOpaque peeks inside a TagOpaque octet string to recover one of the
// four wrapped application kinds, falling back to a plain opaque blob if
// the envelope tag pair is absent (legacy opaque values predating the
// draft-perkins extension carry no inner tag at all).
func decodeOpaque(buf []byte) (TypedValue, []byte, error) {
	if v, t, err := ber.ParseOpaqueFloat(buf); err == nil {
		return OpaqueFloatValue(v), t, nil
	}
	if v, t, err := ber.ParseOpaqueDouble(buf); err == nil {
		return OpaqueDoubleValue(v), t, nil
	}
	if v, t, err := ber.ParseOpaqueInt64(buf); err == nil {
		return OpaqueInt64Value(v), t, nil
	}
	if v, t, err := ber.ParseOpaqueUnsigned64(buf); err == nil {
		return OpaqueUnsigned64Value(v), t, nil
	}
	v, _, t, err := ber.ParseOctetString(buf, ber.TagOpaque)
	if err != nil {
		return TypedValue{}, nil, err
	}
	return OpaqueValue(v), t, nil
}
