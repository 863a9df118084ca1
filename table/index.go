// Package table implements the MIB table helper: OID index decomposition,
// sparse-column advance, a generic row container, and the SMI RowStatus
// transition matrix, generalizing original_source/Firmware/Priot/
// TableContainer.c and Firmware/Core/TextualConvention.c.
package table

import (
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/oid"
)

// ErrColumnOutOfRange is returned when a request OID's column number falls
// outside a registration's declared [MinColumn, MaxColumn].
var ErrColumnOutOfRange = errors.New("table: column out of range")

// ErrMalformedIndex is returned when the trailing sub-ids of a request OID
// do not decode against the table's index template.
var ErrMalformedIndex = errors.New("table: malformed index")

// Registration describes a table's column range and, for sparse tables,
// the set of columns actually implemented -- spec.md §4.5 step 1/3.
type Registration struct {
	EntryRoot      oid.OID
	MinColumn      uint32
	MaxColumn      uint32
	SparseColumns  []uint32 // ascending; nil means "every column in range"
	IndexTemplate  []IndexField
}

// IndexField describes one component of a table's index, enough to know
// how many sub-ids it consumes when decomposing a trailing index (fixed
// width for integer-like types, length-prefixed for OCTET STRING/OID).
type IndexField struct {
	Name          string
	LengthPrefixed bool
	FixedWidth    int // used when !LengthPrefixed; 0 means "exactly one sub-id"
}

// RequestInfo is the per-request data the table helper attaches to a
// handler.Request, spec.md §4.5's TableRequestInfo: the decomposed column
// number and index sub-id groups, ready for the sub-handler.
type RequestInfo struct {
	Column int
	Index  []oid.OID // one OID per IndexField, in template order
}

// Decompose validates that requested lies within reg's column range and
// splits its trailing sub-ids into an index per reg.IndexTemplate,
// returning the column number and per-field index components.
func Decompose(reg *Registration, requested oid.OID) (*RequestInfo, error) {
	suffix, ok := requested.TrimPrefix(reg.EntryRoot)
	if !ok || len(suffix) == 0 {
		return nil, ErrMalformedIndex
	}
	column := suffix[0]
	if column < reg.MinColumn || column > reg.MaxColumn {
		return nil, ErrColumnOutOfRange
	}

	rest := suffix[1:]
	idx := make([]oid.OID, len(reg.IndexTemplate))
	for i, field := range reg.IndexTemplate {
		width := field.FixedWidth
		if field.LengthPrefixed {
			if len(rest) == 0 {
				return nil, ErrMalformedIndex
			}
			width = 1 + int(rest[0])
		} else if width == 0 {
			width = 1
		}
		if width > len(rest) {
			return nil, ErrMalformedIndex
		}
		idx[i] = append(oid.OID(nil), rest[:width]...)
		rest = rest[width:]
	}
	if len(rest) != 0 {
		return nil, ErrMalformedIndex
	}

	return &RequestInfo{Column: int(column), Index: idx}, nil
}

// NextColumn returns the column immediately after column within reg's
// range, honoring SparseColumns when present, and whether one exists --
// spec.md §4.5 step 3 "advances to the next column ... using a
// sparse-columns descriptor if present".
func NextColumn(reg *Registration, column uint32) (uint32, bool) {
	if len(reg.SparseColumns) == 0 {
		if column+1 > reg.MaxColumn {
			return 0, false
		}
		return column + 1, true
	}
	for _, c := range reg.SparseColumns {
		if c > column {
			return c, true
		}
	}
	return 0, false
}

// FirstColumn returns reg's first implemented column.
func FirstColumn(reg *Registration) uint32 {
	if len(reg.SparseColumns) > 0 {
		return reg.SparseColumns[0]
	}
	return reg.MinColumn
}
