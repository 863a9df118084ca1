package ber

import "github.com/pkg/errors"

// ParseOctetString decodes an octet string value (OctetString, Opaque, or
// the fixed-length IpAddress application tag, which is wire-identical to
// an octet string).
func ParseOctetString(buf []byte, want Tag) (value []byte, tag Tag, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, 0, nil, err
	}
	if !acceptsAsOctetString(hdr.Type, want) {
		return nil, 0, nil, errors.Wrapf(ErrBadTag, "want %#x got %#x", want, hdr.Type)
	}
	if hdr.Type == TagIPAddress && hdr.ContentsLen != 4 {
		return nil, 0, nil, errors.Wrap(ErrBadLength, "ip address must be 4 octets")
	}
	content, tail := contents(rest, hdr.ContentsLen)
	out := make([]byte, len(content))
	copy(out, content)
	return out, hdr.Type, tail, nil
}

// BuildOctetString forward-encodes an octet string value (also used for
// Opaque content and the 4-octet IpAddress application tag).
func BuildOctetString(buf []byte, tag Tag, value []byte) ([]byte, bool) {
	return writeTLV(buf, tag, value)
}

// ParseNull decodes a Null value, which carries no content.
func ParseNull(buf []byte) (tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	if hdr.Type != TagNull {
		return nil, errors.Wrapf(ErrBadTag, "want Null got %#x", hdr.Type)
	}
	_, tail = contents(rest, hdr.ContentsLen)
	return tail, nil
}

// BuildNull forward-encodes a Null value.
func BuildNull(buf []byte) ([]byte, bool) {
	return writeTLV(buf, TagNull, nil)
}

// ParseBitString decodes a BIT STRING, returning the raw content octets
// (first octet is the count of unused bits in the final octet, per BER;
// callers that need the bit-level view strip it themselves).
func ParseBitString(buf []byte) (value []byte, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return nil, nil, err
	}
	if hdr.Type != TagBitString {
		return nil, nil, errors.Wrapf(ErrBadTag, "want BitString got %#x", hdr.Type)
	}
	if hdr.ContentsLen < 1 {
		return nil, nil, errors.Wrap(ErrBadLength, "bit string missing unused-bits octet")
	}
	content, tail := contents(rest, hdr.ContentsLen)
	out := make([]byte, len(content))
	copy(out, content)
	return out, tail, nil
}

// BuildBitString forward-encodes a BIT STRING. value must already include
// the leading unused-bits-count octet.
func BuildBitString(buf []byte, value []byte) ([]byte, bool) {
	return writeTLV(buf, TagBitString, value)
}
