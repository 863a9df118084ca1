// Package oid provides the in-memory Object Identifier type shared by the
// registry, varbind, and table packages. It is independent of ber's wire
// codec (which moves between []byte and []uint32); this package works
// purely on the []uint32 representation and its string form.
package oid

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OID is an Object Identifier: a sequence of sub-identifier arcs.
type OID []uint32

// ErrEmpty is returned by Parse when given an empty or all-separator string.
var ErrEmpty = errors.New("oid: empty")

// Parse converts a dotted-decimal string ("1.3.6.1.4.1.8072") into an OID.
// Leading and trailing dots are tolerated and stripped, matching the
// leniency of string-based OID arguments elsewhere in this protocol family.
func Parse(s string) (OID, error) {
	trimmed := strings.Trim(s, ".")
	if trimmed == "" {
		return nil, ErrEmpty
	}
	parts := strings.Split(trimmed, ".")
	out := make(OID, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "oid: bad sub-identifier %q", p)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// MustParse is Parse but panics on error; intended for package-level table
// and registry initialization where the OID literal is known at compile
// time.
func MustParse(s string) OID {
	o, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return o
}

// String renders the OID in dotted-decimal form.
func (o OID) String() string {
	if len(o) == 0 {
		return ""
	}
	var b strings.Builder
	for i, v := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return b.String()
}

// Copy returns an independent copy of o.
func (o OID) Copy() OID {
	out := make(OID, len(o))
	copy(out, o)
	return out
}

// Equal reports whether o and other have identical arcs.
func (o OID) Equal(other OID) bool {
	return o.Compare(other) == 0
}

// Compare returns -1, 0, or 1 as o is lexicographically less than, equal
// to, or greater than other, comparing arc by arc and treating a shorter
// OID that is a prefix of a longer one as coming first -- the ordering
// GETNEXT/GETBULK tree-walks rely on.
func (o OID) Compare(other OID) int {
	n := len(o)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		switch {
		case o[i] < other[i]:
			return -1
		case o[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(o) < len(other):
		return -1
	case len(o) > len(other):
		return 1
	default:
		return 0
	}
}

// IsPrefix reports whether o is a prefix of other (including o == other).
func (o OID) IsPrefix(other OID) bool {
	if len(o) > len(other) {
		return false
	}
	for i, v := range o {
		if other[i] != v {
			return false
		}
	}
	return true
}

// IsStrictPrefix reports whether o is a proper prefix of other (o != other).
func (o OID) IsStrictPrefix(other OID) bool {
	return len(o) < len(other) && o.IsPrefix(other)
}

// Append returns a new OID with the given trailing arcs appended; it never
// mutates o.
func (o OID) Append(arcs ...uint32) OID {
	out := make(OID, 0, len(o)+len(arcs))
	out = append(out, o...)
	out = append(out, arcs...)
	return out
}

// TrimPrefix returns the arcs of o following prefix, and reports whether
// prefix was in fact a prefix of o. Used to recover an instance's index
// arcs once a column OID's length is known.
func (o OID) TrimPrefix(prefix OID) (suffix OID, ok bool) {
	if !prefix.IsPrefix(o) {
		return nil, false
	}
	return o[len(prefix):], true
}
