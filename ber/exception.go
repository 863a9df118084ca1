package ber

import "github.com/pkg/errors"

// exception values (NoSuchObject, NoSuchInstance, EndOfMibView) carry no
// content; they appear in response variable bindings in place of a value
// when a requested OID cannot be resolved, per §4.8/§7.

// ParseException decodes one of the three context-tagged exception values.
func ParseException(buf []byte) (tag Tag, tail []byte, err error) {
	hdr, rest, err := ParseHeader(buf)
	if err != nil {
		return 0, nil, err
	}
	switch hdr.Type {
	case TagNoSuchObject, TagNoSuchInstance, TagEndOfMibView:
	default:
		return 0, nil, errors.Wrapf(ErrBadTag, "not an exception tag: %#x", hdr.Type)
	}
	_, tail = contents(rest, hdr.ContentsLen)
	return hdr.Type, tail, nil
}

// BuildException forward-encodes one of the three exception tags.
func BuildException(buf []byte, tag Tag) ([]byte, bool) {
	switch tag {
	case TagNoSuchObject, TagNoSuchInstance, TagEndOfMibView:
	default:
		return nil, false
	}
	return writeTLV(buf, tag, nil)
}

// IsException reports whether tag is one of the three exception tags.
func IsException(tag Tag) bool {
	switch tag {
	case TagNoSuchObject, TagNoSuchInstance, TagEndOfMibView:
		return true
	}
	return false
}

// ParseIPAddress decodes the fixed 4-octet IpAddress application tag.
func ParseIPAddress(buf []byte) (value [4]byte, tail []byte, err error) {
	raw, _, tail, err := ParseOctetString(buf, TagIPAddress)
	if err != nil {
		return [4]byte{}, nil, err
	}
	if len(raw) != 4 {
		return [4]byte{}, nil, errors.Wrap(ErrBadLength, "ip address")
	}
	var out [4]byte
	copy(out[:], raw)
	return out, tail, nil
}

// BuildIPAddress forward-encodes a 4-octet IpAddress value.
func BuildIPAddress(buf []byte, value [4]byte) ([]byte, bool) {
	return BuildOctetString(buf, TagIPAddress, value[:])
}
