package ber

import "github.com/pkg/errors"

// ParseOID decodes an OBJECT IDENTIFIER into its sub-identifier sequence.
// The first two sub-identifiers are recovered from the combined first
// byte using the standard x*40+y rule, except that by convention the
// first sub-identifier is capped at 2 (values of x greater than 2 are not
// representable and are folded into y, matching common BER practice for
// OIDs whose first arc is already >= 2).
func ParseOID(buf []byte) (value []uint32, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, nil, err
	}
	if hdr.Type != TagObjectId {
		return nil, nil, errors.Wrapf(ErrBadTag, "want ObjectId got %#x", hdr.Type)
	}
	content, tail := contents(rest, hdr.ContentsLen)
	if len(content) == 0 {
		return []uint32{}, tail, nil
	}

	subids, err := decodeSubIdentifiers(content)
	if err != nil {
		return nil, nil, err
	}

	first := subids[0]
	var x, y uint32
	if first < 80 {
		x = first / 40
		y = first % 40
	} else {
		x = 2
		y = first - 80
	}

	out := make([]uint32, 0, len(subids)+1)
	out = append(out, x, y)
	out = append(out, subids[1:]...)

	if len(out) > MaxOIDLen {
		return nil, nil, errors.Wrap(ErrBadLength, "oid exceeds maximum length")
	}

	return out, tail, nil
}

// decodeSubIdentifiers reads the base-128, high-bit-continuation encoded
// sub-identifiers making up content. The first value returned is the
// combined x*40+y sub-identifier; the caller splits it into its pair.
func decodeSubIdentifiers(content []byte) ([]uint32, error) {
	var out []uint32
	var cur uint64
	started := false
	for _, b := range content {
		cur = cur<<7 | uint64(b&0x7F)
		started = true
		if b&continuationBit == 0 {
			out = append(out, uint32(cur))
			cur = 0
			started = false
		}
	}
	if started {
		return nil, errors.Wrap(ErrTruncated, "oid sub-identifier")
	}
	return out, nil
}

// BuildOID forward-encodes an OID, folding the first two sub-identifiers
// into the single x*40+y octet sequence.
func BuildOID(buf []byte, value []uint32) ([]byte, bool) {
	content := encodeOIDContent(value)
	return writeTLV(buf, TagObjectId, content)
}

func encodeOIDContent(value []uint32) []byte {
	if len(value) == 0 {
		return nil
	}
	x, y := value[0], uint32(0)
	if len(value) > 1 {
		y = value[1]
	}
	first := x*40 + y
	var content []byte
	content = appendSubIdentifier(content, first)
	for _, sub := range value[2:] {
		content = appendSubIdentifier(content, sub)
	}
	return content
}

func appendSubIdentifier(buf []byte, v uint32) []byte {
	var tmp [5]byte
	n := 0
	tmp[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		tmp[n] = byte(v&0x7F) | continuationBit
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, tmp[i])
	}
	return buf
}
