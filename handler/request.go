package handler

import (
	"log"

	"github.com/damianoneill/priotagent/varbind"
)

// Request wraps a single variable binding as it travels through a handler
// chain, matching spec.md §3's Request tuple `(variable, index, status,
// processed, delegated, parentData, agentReqInfo)`.
type Request struct {
	Variable  *varbind.VB
	Index     int
	Status    int
	Processed bool
	Delegated bool

	// Info carries the mode and session/transaction context shared by
	// every request in a batch (spec.md's AgentRequestInfo).
	Info *RequestInfo

	parentData map[string]parentDataEntry
}

type parentDataEntry struct {
	value interface{}
	free  func(interface{})
}

// RequestInfo is the batch-wide context handed alongside a slice of
// Requests, matching spec.md's AgentRequestInfo `(mode, asp, sessionContext,
// transactionId)`.
type RequestInfo struct {
	Mode           Mode
	SessionContext string
	TransactionID  string
}

// NewRequest builds a Request for vb at the given 1-based index.
func NewRequest(vb *varbind.VB, index int, info *RequestInfo) *Request {
	return &Request{Variable: vb, Index: index, Info: info}
}

// SetParentData attaches a named entry to the request, freed via freeFn
// (if non-nil) when the request is destroyed or the entry explicitly
// removed. Per spec.md §4.4, a duplicate name logs a warning and leaves
// the existing entry untouched.
func (r *Request) SetParentData(name string, value interface{}, freeFn func(interface{})) {
	if r.parentData == nil {
		r.parentData = make(map[string]parentDataEntry)
	}
	if _, exists := r.parentData[name]; exists {
		log.Printf("handler: parentData %q already set, duplicate set ignored", name)
		return
	}
	r.parentData[name] = parentDataEntry{value: value, free: freeFn}
}

// ParentData retrieves a previously attached entry.
func (r *Request) ParentData(name string) (interface{}, bool) {
	e, ok := r.parentData[name]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// RemoveParentData frees and removes a named entry, if present.
func (r *Request) RemoveParentData(name string) {
	e, ok := r.parentData[name]
	if !ok {
		return
	}
	if e.free != nil {
		e.free(e.value)
	}
	delete(r.parentData, name)
}

// Destroy frees every remaining parentData entry, called once the request
// is fully processed (spec.md §3 "freed when the request is destroyed").
func (r *Request) Destroy() {
	for name := range r.parentData {
		r.RemoveParentData(name)
	}
}
