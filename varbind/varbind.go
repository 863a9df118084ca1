package varbind

import "github.com/damianoneill/priotagent/oid"

// inlineBufferSize matches VariableList_s's `buffer[40]`: the original
// comment notes the 90th percentile of encoded values fits under 40 bytes,
// so that's kept as a scratch area to avoid an allocation on the common
// path when a VB is re-encoded.
const inlineBufferSize = 40

// VB is a single variable binding: an OID paired with a typed value, plus
// the per-request bookkeeping the original VariableList_s struct carries
// (original_source/Firmware/Core/System/Util/VariableList.h) -- an index
// into the request's ordering, an opaque per-binding data slot used by
// table handlers to stash row lookups between SET phases, and the
// associated free hook.
type VB struct {
	Name  oid.OID
	Value TypedValue
	// Index is this binding's 1-based position within its originating
	// request, preserved across handler dispatch so ErrorIndex in a
	// response can point back at the offending binding.
	Index int

	// Data is scratch storage a handler may attach during RESERVE1 and
	// read back in later SET phases (ACTION/COMMIT/UNDO/FREE) for the
	// same binding, mirroring VariableList_s.data/dataFreeHook.
	Data     any
	DataFree func(any)

	inline [inlineBufferSize]byte
	heap   []byte

	next *VB
}

// scratch returns a byte slice of length n backed by the inline array when
// it fits, falling back to a heap allocation otherwise.
func (v *VB) scratch(n int) []byte {
	if n <= inlineBufferSize {
		return v.inline[:n]
	}
	if cap(v.heap) < n {
		v.heap = make([]byte, n)
	}
	return v.heap[:n]
}

// Encode renders the binding's OID followed by its typed value into a
// scratch buffer that starts as the inline array and doubles, onto the
// heap, until the encoding fits. Callers needing the exact
// encoded form should still use ber.Writer/ReverseBuilder directly; this
// is a convenience for handlers and tests that want a one-shot []byte.
func (v *VB) Encode() []byte {
	buf := v.scratch(inlineBufferSize)
	for {
		tail, ok := v.encodeInto(buf)
		if ok {
			return buf[:len(buf)-len(tail)]
		}
		buf = v.scratch(len(buf) * 2)
	}
}

func (v *VB) encodeInto(buf []byte) ([]byte, bool) {
	tail, ok := oidEncode(buf, v.Name)
	if !ok {
		return nil, false
	}
	return v.Value.Encode(tail)
}

func oidEncode(buf []byte, o oid.OID) ([]byte, bool) {
	return oid.Encode(buf, o)
}

// FreeData invokes DataFree on Data if both are set, then clears both
// fields; callers invoke this once a binding's SET-phase lifecycle (§set
// module) has ended.
func (v *VB) FreeData() {
	if v.DataFree != nil && v.Data != nil {
		v.DataFree(v.Data)
	}
	v.Data = nil
	v.DataFree = nil
}

// VarList is a singly linked chain of variable bindings, replacing the
// `next *VariableList_s` field of the original struct with an explicit
// container so dispatch/table code doesn't need to special-case list-head
// manipulation inline.
type VarList struct {
	head *VB
	tail *VB
	n    int
}

// NewVarList builds a VarList from the given bindings, in order, stamping
// each one's Index as it is appended.
func NewVarList(vbs ...*VB) *VarList {
	l := &VarList{}
	for _, vb := range vbs {
		l.Append(vb)
	}
	return l
}

// Len returns the number of bindings in the list.
func (l *VarList) Len() int { return l.n }

// Append adds vb to the end of the list and stamps its Index.
func (l *VarList) Append(vb *VB) {
	vb.next = nil
	vb.Index = l.n + 1
	if l.tail == nil {
		l.head, l.tail = vb, vb
	} else {
		l.tail.next = vb
		l.tail = vb
	}
	l.n++
}

// First returns the head binding, or nil if the list is empty.
func (l *VarList) First() *VB { return l.head }

// Next returns the binding following vb in l, or nil if vb is the last.
func (l *VarList) Next(vb *VB) *VB { return vb.next }

// Slice materializes the list as a slice, in order.
func (l *VarList) Slice() []*VB {
	out := make([]*VB, 0, l.n)
	for vb := l.head; vb != nil; vb = vb.next {
		out = append(out, vb)
	}
	return out
}

// ForEach calls fn for every binding in order, stopping early if fn
// returns false.
func (l *VarList) ForEach(fn func(*VB) bool) {
	for vb := l.head; vb != nil; vb = vb.next {
		if !fn(vb) {
			return
		}
	}
}
