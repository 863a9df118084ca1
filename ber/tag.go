// Package ber implements a bidirectional Basic Encoding Rules (BER) coder
// for the tag set used by the SNMP-style management protocol that this
// module serves: integers, unsigned/counter/gauge/timeticks, octet
// strings, object identifiers, sequences, bit strings, and the
// opaque-wrapped 64-bit counter/float/double extensions.
//
// Two encoder styles are provided, matching the original C implementation's
// dual API: Build* writes forward into a caller-supplied fixed buffer, and
// the Reverse builder writes from the tail of a growable buffer backward,
// reallocating on demand.
package ber

import "github.com/pkg/errors"

// Class is the two-bit tag class.
type Class byte

const (
	ClassUniversal   Class = 0x00
	ClassApplication Class = 0x40
	ClassContext     Class = 0x80
	ClassPrivate     Class = 0xC0
)

const (
	classMask     = 0xC0
	constructedBit = 0x20
	tagNumberMask = 0x1F
	extensionID   = 0x1F
	longLenBit    = 0x80
	continuationBit = 0x80
)

// Tag identifies the ASN.1/SNMP kind of an encoded value. It is the
// resolved (class|constructed|number) identifier byte for the single-octet
// forms used throughout this protocol; no tag in the recognized set
// requires the multi-octet extension-id form, but the parser accepts it
// and collapses it to the matching Tag value.
type Tag byte

const (
	TagBoolean    Tag = 0x01
	TagInteger    Tag = 0x02
	TagBitString  Tag = 0x03
	TagOctetString Tag = 0x04
	TagNull       Tag = 0x05
	TagObjectId   Tag = 0x06
	TagSequence   Tag = 0x30 // universal | constructed | 0x10

	TagIPAddress  Tag = byte(ClassApplication) | 0x00
	TagCounter32  Tag = byte(ClassApplication) | 0x01
	TagGauge32    Tag = byte(ClassApplication) | 0x02
	TagUnsigned32 Tag = TagGauge32
	TagTimeTicks  Tag = byte(ClassApplication) | 0x03
	TagOpaque     Tag = byte(ClassApplication) | 0x04
	TagCounter64  Tag = byte(ClassApplication) | 0x06

	TagNoSuchObject   Tag = byte(ClassContext) | 0x00
	TagNoSuchInstance Tag = byte(ClassContext) | 0x01
	TagEndOfMibView   Tag = byte(ClassContext) | 0x02
)

// Opaque-wrapped application tags (carried inside a TagOpaque octet
// string, per the draft-perkins-opaque encoding mandated by §4.1).
const (
	OpaqueFloat    Tag = byte(ClassApplication) | 0x08
	OpaqueDouble   Tag = byte(ClassApplication) | 0x09
	OpaqueInt64    Tag = byte(ClassApplication) | 0x0A
	OpaqueUnsigned64 Tag = byte(ClassApplication) | 0x0B
)

// OpaqueTag1 is the first octet of the two-byte opaque envelope tag pair:
// context class with the extension-id marker set.
const OpaqueTag1 = byte(ClassContext) | extensionID

// OpaqueTag2Base is added to an inner application tag number to produce
// the second octet of the envelope tag pair.
const OpaqueTag2Base = 0x30

// MaxOIDLen is the maximum practical number of sub-identifiers in an OID.
const MaxOIDLen = 128

// errors in the taxonomy exposed by the codec (§7).
var (
	ErrTruncated = errors.New("ber: truncated object")
	ErrBadLength = errors.New("ber: bad length")
	ErrBadTag    = errors.New("ber: unexpected tag")
	ErrBufferFull = errors.New("ber: buffer full")
)

// Class returns the class bits of a tag.
func (t Tag) Class() Class { return Class(byte(t) & classMask) }

// IsConstructed reports whether the constructor bit is set.
func (t Tag) IsConstructed() bool { return byte(t)&constructedBit != 0 }

// Number returns the tag number (low 5 bits, before extension).
func (t Tag) Number() byte { return byte(t) & tagNumberMask }

// acceptsAsInteger reports whether a tag may be parsed by the integer
// family of parsers: the protocol's primitive integer parser also accepts
// the application-tagged counter/gauge/timeticks kinds, which are
// wire-encoded as plain (possibly unsigned) integers. IpAddress is wire
// encoded as four raw octets and is handled by the octet-string family
// instead, not here.
func acceptsAsInteger(t Tag, want Tag) bool {
	if t == want {
		return true
	}
	switch want {
	case TagInteger:
		switch t {
		case TagCounter32, TagGauge32, TagTimeTicks:
			return true
		}
	}
	return false
}

// acceptsAsOctetString reports whether a tag may be parsed by the
// octet-string family: IpAddress is a fixed 4-byte octet string with an
// application tag.
func acceptsAsOctetString(t Tag, want Tag) bool {
	if t == want {
		return true
	}
	if want == TagOctetString && t == TagIPAddress {
		return true
	}
	return false
}
