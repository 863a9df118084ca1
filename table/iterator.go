package table

import "github.com/damianoneill/priotagent/oid"

// Iterator drives the iterator-keyed table variant (spec.md §4.5 step 5):
// a sub-handler supplies GetFirst/GetNext instead of owning a Container,
// and the helper walks them until the requested key is reached. The data
// pointer each callback returns is threaded through to the sub-handler as
// its request's parentData ("data_context" in the original C handler).
type Iterator struct {
	GetFirst func() (key oid.OID, data interface{}, ok bool)
	GetNext  func(prev oid.OID) (key oid.OID, data interface{}, ok bool)
}

// Seek walks the iterator from the beginning until it reaches a key equal
// to or greater than target, returning that row (or ok=false if the
// iterator is exhausted first).
func (it *Iterator) Seek(target oid.OID) (key oid.OID, data interface{}, ok bool) {
	key, data, ok = it.GetFirst()
	for ok && key.Compare(target) < 0 {
		key, data, ok = it.GetNext(key)
	}
	return key, data, ok
}

// Next returns the row strictly after prev.
func (it *Iterator) Next(prev oid.OID) (key oid.OID, data interface{}, ok bool) {
	return it.GetNext(prev)
}
