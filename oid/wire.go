package oid

import "github.com/damianoneill/priotagent/ber"

// Encode forward-encodes o using ber.BuildOID, matching the wire contract
// used throughout pdu/ and registry/.
func Encode(buf []byte, o OID) ([]byte, bool) {
	return ber.BuildOID(buf, []uint32(o))
}

// Decode parses a wire-encoded OID back into the in-memory type.
func Decode(buf []byte) (value OID, tail []byte, err error) {
	raw, tail, err := ber.ParseOID(buf)
	if err != nil {
		return nil, nil, err
	}
	return OID(raw), tail, nil
}
