package ber

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Counter64 holds a 64-bit counter as a (high, low) pair, matching the
// original C API's split representation, alongside the combined value.
type Counter64 struct {
	High uint32
	Low  uint32
}

// Value returns the combined 64-bit value.
func (c Counter64) Value() uint64 {
	return uint64(c.High)<<32 | uint64(c.Low)
}

// Counter64FromUint64 splits v into the (high, low) pair.
func Counter64FromUint64(v uint64) Counter64 {
	return Counter64{High: uint32(v >> 32), Low: uint32(v)}
}

// ParseCounter64 decodes a direct (non-opaque) Counter64 application tag.
func ParseCounter64(buf []byte) (value Counter64, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return Counter64{}, nil, err
	}
	if hdr.Type != TagCounter64 {
		return Counter64{}, nil, errors.Wrapf(ErrBadTag, "want Counter64 got %#x", hdr.Type)
	}
	content, tail := contents(rest, hdr.ContentsLen)
	if len(content) == 0 || len(content) > 9 {
		return Counter64{}, nil, errors.Wrap(ErrBadLength, "counter64")
	}
	var v uint64
	for _, b := range content {
		v = v<<8 | uint64(b)
	}
	return Counter64FromUint64(v), tail, nil
}

// BuildCounter64 forward-encodes a direct Counter64 application tag.
func BuildCounter64(buf []byte, value Counter64) ([]byte, bool) {
	return writeTLV(buf, TagCounter64, minimalUnsignedBytes(value.Value()))
}

// composeOpaqueEnvelope writes the two opaque-tag octets followed by the
// inner application-tagged TLV for content.
func composeOpaqueEnvelope(innerTag Tag, content []byte) []byte {
	inner := make([]byte, 0, tlvSize(len(content)))
	inner = appendIdentifier(inner, innerTag)
	inner = appendLength(inner, len(content))
	inner = append(inner, content...)

	out := make([]byte, 0, 2+len(inner))
	out = append(out, OpaqueTag1, OpaqueTag2Base+byte(innerTag))
	out = append(out, inner...)
	return out
}

// buildOpaque wraps content (tagged innerTag) in the opaque envelope and
// forward-encodes the result as a TagOpaque octet string.
func buildOpaque(buf []byte, innerTag Tag, content []byte) ([]byte, bool) {
	return writeTLV(buf, TagOpaque, composeOpaqueEnvelope(innerTag, content))
}

// parseOpaqueInner decodes an Opaque octet string whose content begins
// with the two-byte opaque tag pair, verifies the inner application tag
// matches wantInner, and returns the inner value's content bytes.
func parseOpaqueInner(buf []byte, wantInner Tag) (content, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, nil, err
	}
	if hdr.Type != TagOpaque {
		return nil, nil, errors.Wrapf(ErrBadTag, "want Opaque got %#x", hdr.Type)
	}
	raw, outerTail := contents(rest, hdr.ContentsLen)
	if len(raw) < 2 {
		return nil, nil, errors.Wrap(ErrTruncated, "opaque envelope")
	}
	if raw[0] != OpaqueTag1 || raw[1] != OpaqueTag2Base+byte(wantInner) {
		return nil, nil, errors.Wrap(ErrBadTag, "opaque envelope tag mismatch")
	}
	innerHdr, innerRest, err := ParseHeader(raw[2:])
	if err != nil {
		return nil, nil, err
	}
	if innerHdr.Type != wantInner {
		return nil, nil, errors.Wrapf(ErrBadTag, "opaque inner want %#x got %#x", wantInner, innerHdr.Type)
	}
	innerContent, innerTail := contents(innerRest, innerHdr.ContentsLen)
	if len(innerTail) != 0 {
		return nil, nil, errors.Wrap(ErrBadLength, "opaque envelope trailing bytes")
	}
	return innerContent, outerTail, nil
}

// ParseOpaqueCounter64 decodes a Counter64 wrapped in the opaque envelope.
func ParseOpaqueCounter64(buf []byte) (value Counter64, tail []byte, err error) {
	content, tail, err := parseOpaqueInner(buf, TagCounter64)
	if err != nil {
		return Counter64{}, nil, err
	}
	if len(content) == 0 || len(content) > 9 {
		return Counter64{}, nil, errors.Wrap(ErrBadLength, "opaque counter64")
	}
	var v uint64
	for _, b := range content {
		v = v<<8 | uint64(b)
	}
	return Counter64FromUint64(v), tail, nil
}

// BuildOpaqueCounter64 forward-encodes a Counter64 wrapped in the opaque
// envelope.
func BuildOpaqueCounter64(buf []byte, value Counter64) ([]byte, bool) {
	return buildOpaque(buf, TagCounter64, minimalUnsignedBytes(value.Value()))
}

// ParseOpaqueUnsigned64 decodes an opaque-wrapped 64-bit unsigned integer.
func ParseOpaqueUnsigned64(buf []byte) (value uint64, tail []byte, err error) {
	content, tail, err := parseOpaqueInner(buf, OpaqueUnsigned64)
	if err != nil {
		return 0, nil, err
	}
	if len(content) == 0 || len(content) > 9 {
		return 0, nil, errors.Wrap(ErrBadLength, "opaque uint64")
	}
	var v uint64
	for _, b := range content {
		v = v<<8 | uint64(b)
	}
	return v, tail, nil
}

// BuildOpaqueUnsigned64 forward-encodes an opaque-wrapped uint64.
func BuildOpaqueUnsigned64(buf []byte, value uint64) ([]byte, bool) {
	return buildOpaque(buf, OpaqueUnsigned64, minimalUnsignedBytes(value))
}

// ParseOpaqueInt64 decodes an opaque-wrapped 64-bit signed integer.
func ParseOpaqueInt64(buf []byte) (value int64, tail []byte, err error) {
	content, tail, err := parseOpaqueInner(buf, OpaqueInt64)
	if err != nil {
		return 0, nil, err
	}
	v, verr := decodeIntegerBytes(content, true)
	if verr != nil {
		return 0, nil, verr
	}
	return v, tail, nil
}

// BuildOpaqueInt64 forward-encodes an opaque-wrapped int64.
func BuildOpaqueInt64(buf []byte, value int64) ([]byte, bool) {
	return buildOpaque(buf, OpaqueInt64, minimalSignedBytes(value))
}

func putFloat32(dst []byte, v float32) {
	binary.BigEndian.PutUint32(dst, math.Float32bits(v))
}

func putFloat64(dst []byte, v float64) {
	binary.BigEndian.PutUint64(dst, math.Float64bits(v))
}

// ParseOpaqueFloat decodes an opaque-wrapped IEEE-754 single-precision
// float, fixed at 4 content octets.
func ParseOpaqueFloat(buf []byte) (value float32, tail []byte, err error) {
	content, tail, err := parseOpaqueInner(buf, OpaqueFloat)
	if err != nil {
		return 0, nil, err
	}
	if len(content) != 4 {
		return 0, nil, errors.Wrap(ErrBadLength, "opaque float")
	}
	bits := binary.BigEndian.Uint32(content)
	return math.Float32frombits(bits), tail, nil
}

// BuildOpaqueFloat forward-encodes an opaque-wrapped float32.
func BuildOpaqueFloat(buf []byte, value float32) ([]byte, bool) {
	content := make([]byte, 4)
	binary.BigEndian.PutUint32(content, math.Float32bits(value))
	return buildOpaque(buf, OpaqueFloat, content)
}

// ParseOpaqueDouble decodes an opaque-wrapped IEEE-754 double-precision
// float, fixed at 8 content octets.
func ParseOpaqueDouble(buf []byte) (value float64, tail []byte, err error) {
	content, tail, err := parseOpaqueInner(buf, OpaqueDouble)
	if err != nil {
		return 0, nil, err
	}
	if len(content) != 8 {
		return 0, nil, errors.Wrap(ErrBadLength, "opaque double")
	}
	bits := binary.BigEndian.Uint64(content)
	return math.Float64frombits(bits), tail, nil
}

// BuildOpaqueDouble forward-encodes an opaque-wrapped float64.
func BuildOpaqueDouble(buf []byte, value float64) ([]byte, bool) {
	content := make([]byte, 8)
	binary.BigEndian.PutUint64(content, math.Float64bits(value))
	return buildOpaque(buf, OpaqueDouble, content)
}
