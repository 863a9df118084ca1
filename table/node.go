package table

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/pdu"
)

// ErrNoRegistration is returned by the stock "table" node when its
// registration's name has no table.Registration registered against it via
// RegisterNamed.
var ErrNoRegistration = errors.New("table: no Registration registered for this handler name")

// parentDataKey is the name under which a decomposed RequestInfo is
// attached to a handler.Request, per spec.md §4.5 step 2.
const parentDataKey = "tableRequestInfo"

var (
	namedMu sync.Mutex
	named   = map[string]*Registration{}
)

// RegisterNamed associates reg with a registry registration name so the
// stock "table" handler.Node (see NewHandlerNode) can find it at request
// time. A table-backed MIB module calls this once at setup, the same
// moment it registers its chain with the registry.
func RegisterNamed(name string, reg *Registration) {
	namedMu.Lock()
	defer namedMu.Unlock()
	named[name] = reg
}

func lookupNamed(name string) (*Registration, bool) {
	namedMu.Lock()
	defer namedMu.Unlock()
	reg, ok := named[name]
	return reg, ok
}

// NewHandlerNode builds the stock "table" node generalizing
// original_source/Firmware/Priot/TableContainer.c's table helper: it
// decomposes each request's OID against the Registration named by
// RegisterNamed and attaches the result to the request as parent data
// (spec.md §4.5 step 2's TableRequestInfo) before passing through to the
// rest of the chain.
func NewHandlerNode() *handler.Node {
	return handler.NewNode("table", tableAccess)
}

func tableAccess(_ *handler.Node, reg *handler.RegistrationInfo, _ *handler.RequestInfo, requests []*handler.Request) error {
	treg, ok := lookupNamed(reg.Name)
	if !ok {
		return errors.Wrapf(ErrNoRegistration, "%q", reg.Name)
	}

	for _, r := range requests {
		info, err := Decompose(treg, r.Variable.Name)
		if err != nil {
			r.Status = int(statusForDecomposeErr(err))
			continue
		}
		r.SetParentData(parentDataKey, info, nil)
	}
	return nil
}

// RequestInfoFor retrieves the RequestInfo the table node attached to r,
// for a row/instance sub-handler further down the chain.
func RequestInfoFor(r *handler.Request) (*RequestInfo, bool) {
	v, ok := r.ParentData(parentDataKey)
	if !ok {
		return nil, false
	}
	info, ok := v.(*RequestInfo)
	return info, ok
}

// statusForDecomposeErr maps a Decompose failure onto the §4.8 error code a
// row/instance sub-handler would otherwise have to compute itself: an
// out-of-range column has no matching object (NoCreation), while a
// malformed index is a badly formed value (InconsistentValue).
func statusForDecomposeErr(err error) pdu.ErrorStatus {
	if errors.Is(err, ErrColumnOutOfRange) {
		return pdu.NoCreation
	}
	return pdu.InconsistentValue
}
