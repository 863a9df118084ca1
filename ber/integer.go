package ber

import "github.com/pkg/errors"

// ParseInteger decodes a signed or application-tagged integer. The value is
// sign-extended from the first content octet's high bit for TagInteger;
// Counter32/Gauge32/TimeTicks are always treated as unsigned.
func ParseInteger(buf []byte, want Tag) (value int64, tag Tag, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	if !acceptsAsInteger(hdr.Type, want) {
		return 0, 0, nil, errors.Wrapf(ErrBadTag, "want %#x got %#x", want, hdr.Type)
	}
	content, tail := contents(rest, hdr.ContentsLen)
	if len(content) == 0 {
		return 0, 0, nil, errors.Wrap(ErrBadLength, "empty integer")
	}

	signed := hdr.Type == TagInteger
	v, verr := decodeIntegerBytes(content, signed)
	if verr != nil {
		return 0, 0, nil, verr
	}
	return v, hdr.Type, tail, nil
}

// ParseUnsigned decodes an unsigned-only integer tag (Counter32, Gauge32,
// Unsigned32, TimeTicks). Per §4.1, a decoder does not enforce the
// encoder's leading-zero-padding rule; it accepts any valid BER integer,
// including non-minimal forms.
func ParseUnsigned(buf []byte, want Tag) (value uint64, tag Tag, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	if hdr.Type != want {
		return 0, 0, nil, errors.Wrapf(ErrBadTag, "want %#x got %#x", want, hdr.Type)
	}
	content, tail := contents(rest, hdr.ContentsLen)
	if len(content) == 0 {
		return 0, 0, nil, errors.Wrap(ErrBadLength, "empty integer")
	}
	v, verr := decodeIntegerBytes(content, false)
	if verr != nil {
		return 0, 0, nil, verr
	}
	return uint64(v), hdr.Type, tail, nil
}

// decodeIntegerBytes interprets content as a BER two's-complement integer,
// sign-extending from the leading octet's high bit only when signed is
// true.
func decodeIntegerBytes(content []byte, signed bool) (int64, error) {
	if len(content) > 9 {
		return 0, errors.Wrap(ErrBadLength, "integer too long")
	}
	var v int64
	if signed && content[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range content {
		v = v<<8 | int64(b)
	}
	return v, nil
}

// minimalSignedBytes renders value as the minimal-length BER content
// octets for a signed integer: drop a leading 0x00 whose successor has a
// clear high bit, drop a leading 0xFF whose successor has a set high bit;
// a single 0x00 or 0xFF byte is always retained (so 0 encodes as one byte
// 0x00, and -1 as one byte 0xFF).
func minimalSignedBytes(value int64) []byte {
	var raw [8]byte
	for i := 7; i >= 0; i-- {
		raw[i] = byte(value)
		value >>= 8
	}
	b := raw[:]
	for len(b) > 1 {
		if b[0] == 0x00 && b[1]&0x80 == 0 {
			b = b[1:]
			continue
		}
		if b[0] == 0xFF && b[1]&0x80 != 0 {
			b = b[1:]
			continue
		}
		break
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// minimalUnsignedBytes renders value as minimal-length content octets for
// an unsigned integer, always emitting a leading zero octet when the
// natural most-significant byte's high bit is set.
func minimalUnsignedBytes(value uint64) []byte {
	var raw [9]byte
	w := len(raw)
	if value == 0 {
		w--
		raw[w] = 0
	}
	for value > 0 {
		w--
		raw[w] = byte(value)
		value >>= 8
	}
	b := raw[w:]
	for len(b) > 1 && b[0] == 0x00 && b[1]&0x80 == 0 {
		b = b[1:]
	}
	if b[0]&0x80 != 0 {
		padded := make([]byte, len(b)+1)
		copy(padded[1:], b)
		b = padded
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// BuildInteger forward-encodes a signed integer into buf, which must have
// exactly as much usable space as the caller is willing to spend (its
// length, not its capacity, is the budget). It returns the unused
// remainder of buf and true on success, or (nil, false) without writing
// anything if buf is too small -- it never truncates.
func BuildInteger(buf []byte, tag Tag, value int64) ([]byte, bool) {
	return writeTLV(buf, tag, minimalSignedBytes(value))
}

// BuildUnsigned forward-encodes an unsigned integer (Counter32, Gauge32,
// TimeTicks, Unsigned32) using the same contract as BuildInteger.
func BuildUnsigned(buf []byte, tag Tag, value uint64) ([]byte, bool) {
	return writeTLV(buf, tag, minimalUnsignedBytes(value))
}

// writeTLV writes the identifier, minimal-form length, and content octets
// of a tag+content pair into the front of buf, copying (never appending)
// so that buf's length is the hard ceiling on space used.
func writeTLV(buf []byte, tag Tag, content []byte) ([]byte, bool) {
	need := tlvSize(len(content))
	if len(buf) < need {
		return nil, false
	}
	w := appendIdentifier(buf[:0:0], tag)
	w = appendLength(w, len(content))
	w = append(w, content...)
	copy(buf, w)
	return buf[need:], true
}

// tlvSize returns the total encoded size (identifier + length + content)
// for a content region of length n.
func tlvSize(n int) int {
	return 1 + lengthSize(n) + n
}
