package pdu

import (
	"encoding/asn1"

	"github.com/geoffgarside/ber"
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/varbind"
)

// The wire framing here follows the teacher's three-stage unmarshal
// (damianoneill-net/v2/snmp/session.go parseResponse/buildPacket,
// server.go processMessage/acknowledgeInform) almost verbatim: an outer
// envelope carries the PDU as an opaque ASN.1 raw value so the message
// type byte can be swapped for the universal SEQUENCE tag before a second
// pass decodes the PDU's fields, and a third pass resolves each variable
// binding's value from its own raw tag. That dispatch (tag -> Go type) now
// lives in varbind.DecodeTypedValue instead of a per-client switch, since
// an agent core must also encode every kind a client only ever reads.

// messageTag maps a wire-facing Type to the SNMP message type byte poked
// into the outer PDU's tag octet, matching the teacher's
// getMessage/getNextMessage/getBulkMessage constants extended to the full
// set this protocol's agent core must handle.
func messageTag(t Type) (byte, error) {
	switch t {
	case TypeGet:
		return 0xA0, nil
	case TypeGetNext:
		return 0xA1, nil
	case TypeResponse:
		return 0xA2, nil
	case TypeSet:
		return 0xA3, nil
	case TypeGetBulk:
		return 0xA5, nil
	case TypeTrap:
		return 0xA4, nil
	case TypeNotification:
		return 0xA7, nil
	}
	return 0, errors.Errorf("pdu: type %s has no wire representation", t)
}

func typeFromTag(tag byte) (Type, error) {
	switch tag {
	case 0xA0:
		return TypeGet, nil
	case 0xA1:
		return TypeGetNext, nil
	case 0xA2:
		return TypeResponse, nil
	case 0xA3:
		return TypeSet, nil
	case 0xA5:
		return TypeGetBulk, nil
	case 0xA4:
		return TypeTrap, nil
	case 0xA7:
		return TypeNotification, nil
	}
	return 0, errors.Errorf("pdu: unrecognised message tag %#x", tag)
}

// rawPacket is the outer SNMP message: version, community/security
// parameters, and the PDU left as an opaque raw value until its message
// type byte has been inspected and swapped -- identical in shape to the
// teacher's unexported packet struct.
type rawPacket struct {
	Version   int
	Community []byte
	RawPdu    asn1.RawValue
}

// rawPDU mirrors the teacher's unexported rawPDU: the fields that are
// wire-primitive (request id, error status/index) decode directly, while
// each variable binding's value is held as a raw value for a third
// decoding pass.
type rawPDU struct {
	RequestID  int32
	Error      int
	ErrorIndex int
	Varbinds   []rawVarbind
}

type rawVarbind struct {
	OID   asn1.ObjectIdentifier
	Value asn1.RawValue
}

// Encode renders p as a complete wire message: community header, PDU
// type byte, and every variable binding's OID/value pair. p.Type must map
// to a wire message tag (the seven Internal* types do not and return an
// error -- they never reach the wire, only the set/ state machine).
func Encode(p *PDU) ([]byte, error) {
	tag, err := messageTag(p.Type)
	if err != nil {
		return nil, err
	}

	raw := rawPDU{
		RequestID:  p.RequestID,
		Error:      int(p.ErrorStatus),
		ErrorIndex: p.ErrorIndex,
	}
	if p.Type == TypeGetBulk {
		raw.Error = p.NonRepeaters
		raw.ErrorIndex = p.MaxRepetitions
	}
	if p.VarBindings != nil {
		for _, vb := range p.VarBindings.Slice() {
			raw.Varbinds = append(raw.Varbinds, rawVarbind{
				OID:   asn1.ObjectIdentifier(toIntSlice(vb.Name)),
				Value: asn1.RawValue{FullBytes: encodedValueOf(vb)},
			})
		}
	}

	body, err := ber.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "pdu: marshal pdu body")
	}
	body[0] = tag

	pkt := rawPacket{
		Version:   p.Version,
		Community: p.Community,
		RawPdu:    asn1.RawValue{FullBytes: body},
	}
	out, err := ber.Marshal(pkt)
	if err != nil {
		return nil, errors.Wrap(err, "pdu: marshal packet")
	}
	return out, nil
}

// encodedValueOf renders vb's value's complete TLV, growing the scratch
// buffer once if the 512-byte common case is too small.
func encodedValueOf(vb *varbind.VB) []byte {
	buf := make([]byte, 512)
	tail, ok := vb.Value.Encode(buf)
	if !ok {
		buf = make([]byte, 65536)
		tail, _ = vb.Value.Encode(buf)
	}
	return buf[:len(buf)-len(tail)]
}

func toIntSlice(o oid.OID) []int {
	out := make([]int, len(o))
	for i, v := range o {
		out[i] = int(v)
	}
	return out
}

// Decode parses a complete wire message into a PDU.
func Decode(input []byte) (*PDU, error) {
	pkt := &rawPacket{}
	if _, err := ber.Unmarshal(input, pkt); err != nil {
		return nil, errors.Wrap(err, "pdu: unmarshal packet")
	}

	if len(pkt.RawPdu.FullBytes) == 0 {
		return nil, errors.New("pdu: empty pdu")
	}
	tag := pkt.RawPdu.FullBytes[0]
	typ, err := typeFromTag(tag)
	if err != nil {
		return nil, err
	}

	body := make([]byte, len(pkt.RawPdu.FullBytes))
	copy(body, pkt.RawPdu.FullBytes)
	body[0] = 0x30 // universal SEQUENCE tag, so the reflective decoder applies.

	raw := &rawPDU{}
	if _, err := ber.Unmarshal(body, raw); err != nil {
		return nil, errors.Wrap(err, "pdu: unmarshal pdu")
	}

	vbs := varbind.NewVarList()
	for _, rv := range raw.Varbinds {
		value, _, err := varbind.DecodeTypedValue(rv.Value.FullBytes)
		if err != nil {
			return nil, errors.Wrap(err, "pdu: decode varbind value")
		}
		vbs.Append(&varbind.VB{Name: oidFromInts(rv.OID), Value: value})
	}

	out := &PDU{
		Version:     pkt.Version,
		RequestID:   raw.RequestID,
		Type:        typ,
		Community:   pkt.Community,
		VarBindings: vbs,
	}
	if typ == TypeGetBulk {
		out.NonRepeaters = raw.Error
		out.MaxRepetitions = raw.ErrorIndex
	} else {
		out.ErrorStatus = ErrorStatus(raw.Error)
		out.ErrorIndex = raw.ErrorIndex
	}
	return out, nil
}

func oidFromInts(v asn1.ObjectIdentifier) oid.OID {
	out := make(oid.OID, len(v))
	for i, n := range v {
		out[i] = uint32(n)
	}
	return out
}
