package table

import (
	"sort"

	"github.com/damianoneill/priotagent/oid"
)

// Container is a generic, OID-ordered row store for a table helper,
// grounded on original_source/Firmware/Priot/TableContainer.c's
// find/findNext/insert/remove contract. Rows are keyed by an oid.OID
// derived from the row itself via KeyOf, so the same container serves
// both the "row-keyed" variant (key built from a varbind-shaped index)
// and a plain OID-shaped key without a second implementation.
type Container[V any] struct {
	KeyOf func(row V) oid.OID

	entries []entry[V]
}

type entry[V any] struct {
	key oid.OID
	row V
}

// NewContainer builds an empty container keyed by keyOf.
func NewContainer[V any](keyOf func(row V) oid.OID) *Container[V] {
	return &Container[V]{KeyOf: keyOf}
}

func (c *Container[V]) search(key oid.OID) int {
	return sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].key.Compare(key) >= 0
	})
}

// Insert adds or replaces the row keyed by KeyOf(row).
func (c *Container[V]) Insert(row V) {
	key := c.KeyOf(row)
	i := c.search(key)
	if i < len(c.entries) && c.entries[i].key.Equal(key) {
		c.entries[i].row = row
		return
	}
	c.entries = append(c.entries, entry[V]{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = entry[V]{key: key, row: row}
}

// Remove deletes the row at key, if present.
func (c *Container[V]) Remove(key oid.OID) bool {
	i := c.search(key)
	if i >= len(c.entries) || !c.entries[i].key.Equal(key) {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return true
}

// Find returns the row at the exact key, if present.
func (c *Container[V]) Find(key oid.OID) (V, bool) {
	i := c.search(key)
	if i < len(c.entries) && c.entries[i].key.Equal(key) {
		return c.entries[i].row, true
	}
	var zero V
	return zero, false
}

// FindNext returns the lexicographic successor row strictly after key,
// driving GETNEXT/GETBULK traversal across rows.
func (c *Container[V]) FindNext(key oid.OID) (V, bool) {
	i := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].key.Compare(key) > 0
	})
	if i < len(c.entries) {
		return c.entries[i].row, true
	}
	var zero V
	return zero, false
}

// First returns the lowest-keyed row, if any.
func (c *Container[V]) First() (V, bool) {
	if len(c.entries) == 0 {
		var zero V
		return zero, false
	}
	return c.entries[0].row, true
}

// Len reports the row count.
func (c *Container[V]) Len() int { return len(c.entries) }

// Rows returns all rows in key order. The returned slice is owned by the
// caller and safe to mutate.
func (c *Container[V]) Rows() []V {
	out := make([]V, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.row
	}
	return out
}
