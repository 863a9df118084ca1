// Package dispatch drives the agent's core request/response loop: decode
// a PDU, resolve each variable binding against the subtree registry,
// batch adjacent same-registration requests, invoke handler chains (or
// the set state machine for SET PDUs), and assemble the response --
// generalizing damianoneill-net/v2/snmp/server.go's listen/processMessage
// shape from a trap receiver into a full GET/GETNEXT/GETBULK/SET
// dispatcher, per spec.md §4.9.
package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/ber"
	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/pdu"
	"github.com/damianoneill/priotagent/registry"
	"github.com/damianoneill/priotagent/set"
	"github.com/damianoneill/priotagent/trace"
	"github.com/damianoneill/priotagent/varbind"
)

// Dispatcher owns the registry lookups and in-flight delegated-request
// bookkeeping for one agent session.
type Dispatcher struct {
	Registry *registry.Registry
	Trace    *trace.DispatchTrace

	// DelegateTimeout bounds how long a delegated PDU is held waiting for
	// Complete. When it elapses the dispatcher reports Trace.DelegateTimeout
	// and discards the held PDU; no response (GenErr or otherwise) is built
	// for it, and a later Complete for that transaction id returns false.
	DelegateTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]*pendingPDU
}

type pendingPDU struct {
	response *pdu.PDU
	pending  int
	timer    *time.Timer
}

// New builds a Dispatcher over reg. A nil trc installs NoOpDispatchTrace;
// a zero timeout disables delegate timeouts.
func New(reg *registry.Registry, trc *trace.DispatchTrace, delegateTimeout time.Duration) *Dispatcher {
	if trc == nil {
		trc = trace.NoOpDispatchTrace
	}
	return &Dispatcher{
		Registry:        reg,
		Trace:           trc,
		DelegateTimeout: delegateTimeout,
		inFlight:        make(map[string]*pendingPDU),
	}
}

// candidate pairs a resolved registration with the request built against
// it, kept in original arrival order for the batching pass.
type candidate struct {
	req *handler.Request
	reg *registry.Registration
}

// Process decodes a wire-format message, drives it through registry
// lookup, handler invocation (or the SET state machine), and returns the
// encoded response. context is the resolved SNMPv3/community context name
// (empty string for the default context). A nil, nil return means at
// least one request was delegated; the caller should wait for Complete.
func (d *Dispatcher) Process(input []byte, context string) ([]byte, error) {
	d.Trace.ReadComplete(input, nil)

	req, err := pdu.Decode(input)
	if err != nil {
		d.Trace.Error(err)
		return nil, errors.Wrap(err, "dispatch: decode request")
	}

	resp, err := d.dispatch(req, context)
	if err != nil {
		d.Trace.Error(err)
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	out, err := pdu.Encode(resp)
	if err != nil {
		return nil, errors.Wrap(err, "dispatch: encode response")
	}
	d.Trace.WriteComplete(out, nil)
	return out, nil
}

func (d *Dispatcher) dispatch(req *pdu.PDU, context string) (*pdu.PDU, error) {
	switch req.Type {
	case pdu.TypeGet:
		return d.runSimple(req, context, handler.ModeGet)
	case pdu.TypeGetNext:
		return d.runSimple(req, context, handler.ModeGetNext)
	case pdu.TypeGetBulk:
		return d.runGetBulk(req, context)
	case pdu.TypeSet:
		return d.runSet(req, context)
	default:
		return nil, errors.Errorf("dispatch: unsupported request type %s", req.Type)
	}
}

// resolve finds the registration covering name for the given mode. For
// GET, an exact-subtree miss is a hard miss (NoSuchObject). For
// GETNEXT/GETBULK, an in-range match means the handler itself advances to
// the next instance within its own subtree (it receives the original
// query name and is expected to respond with the actual next name/value);
// a miss falls back to the registry's next subtree entirely, handing that
// subtree's handler the original name so it knows to return its first row.
func (d *Dispatcher) resolve(context string, name oid.OID, m handler.Mode) (*registry.Registration, bool) {
	if reg, ok := d.Registry.Find(context, name, m); ok {
		return reg, true
	}
	if m == handler.ModeGetNext || m == handler.ModeGetBulk {
		return d.Registry.FindNext(context, name, m)
	}
	return nil, false
}

func (d *Dispatcher) buildCandidates(vbs []*varbind.VB, info *handler.RequestInfo, context string) []candidate {
	candidates := make([]candidate, len(vbs))
	for i, vb := range vbs {
		reg, found := d.resolve(context, vb.Name, info.Mode)
		d.Trace.VarBindResolved(vb.Name, context, found)

		r := handler.NewRequest(vb, i+1, info)
		candidates[i] = candidate{req: r, reg: reg}
		if !found {
			r.Processed = true
			if info.Mode == handler.ModeGet {
				vb.Value = varbind.ExceptionValue(ber.TagNoSuchObject)
			} else {
				vb.Value = varbind.ExceptionValue(ber.TagEndOfMibView)
			}
		}
	}
	return candidates
}

// invokeBatches groups adjacent same-registration candidates into a
// single handler invocation, per spec.md §4.9 step 4 "adjacent
// same-registration runs are passed in one batch".
func invokeBatches(candidates []candidate) error {
	i := 0
	for i < len(candidates) {
		if candidates[i].reg == nil {
			i++
			continue
		}
		j := i + 1
		for j < len(candidates) && candidates[j].reg == candidates[i].reg {
			j++
		}

		batch := make([]*handler.Request, 0, j-i)
		for k := i; k < j; k++ {
			batch = append(batch, candidates[k].req)
		}

		reg := candidates[i].reg
		regInfo := &handler.RegistrationInfo{Name: reg.Name, Root: reg.Root, Context: reg.Context, Priority: reg.Priority}
		if err := reg.Chain.Invoke(regInfo, batch[0].Info, batch); err != nil {
			return errors.Wrapf(err, "dispatch: handler %q", reg.Name)
		}
		i = j
	}
	return nil
}

func anyDelegated(candidates []candidate) bool {
	for _, c := range candidates {
		if c.req.Delegated {
			return true
		}
	}
	return false
}

func (d *Dispatcher) runSimple(req *pdu.PDU, context string, m handler.Mode) (*pdu.PDU, error) {
	info := &handler.RequestInfo{Mode: m, SessionContext: context, TransactionID: uuid.New().String()}
	vbs := req.VarBindings.Slice()
	candidates := d.buildCandidates(vbs, info, context)

	if err := invokeBatches(candidates); err != nil {
		return nil, err
	}

	if anyDelegated(candidates) {
		d.Trace.Delegated(info.TransactionID)
		d.registerPending(info.TransactionID, req, candidates)
		return nil, nil
	}

	return pdu.NewResponse(req, pdu.NoError, 0, req.VarBindings), nil
}

// runGetBulk expands a GETBULK request into NonRepeaters single GETNEXT
// lookups followed by MaxRepetitions rounds over the remaining
// (repeating) bindings, each round's query seeded from the previous
// round's result, per spec.md §4.7 "Repeated GETNEXT with non-repeater
// and max-repetition counts".
func (d *Dispatcher) runGetBulk(req *pdu.PDU, context string) (*pdu.PDU, error) {
	src := req.VarBindings.Slice()
	nonRep := req.NonRepeaters
	if nonRep < 0 {
		nonRep = 0
	}
	if nonRep > len(src) {
		nonRep = len(src)
	}
	maxRep := req.MaxRepetitions
	if maxRep < 0 {
		maxRep = 0
	}

	out := varbind.NewVarList()
	info := &handler.RequestInfo{Mode: handler.ModeGetBulk, SessionContext: context, TransactionID: uuid.New().String()}

	if nonRep > 0 {
		round := make([]*varbind.VB, nonRep)
		for i := 0; i < nonRep; i++ {
			round[i] = &varbind.VB{Name: src[i].Name.Copy()}
		}
		if err := d.runBulkRound(round, info, context); err != nil {
			return nil, err
		}
		for _, vb := range round {
			out.Append(vb)
		}
	}

	repeaters := src[nonRep:]
	current := make([]oid.OID, len(repeaters))
	for i, vb := range repeaters {
		current[i] = vb.Name.Copy()
	}

	for r := 0; r < maxRep; r++ {
		round := make([]*varbind.VB, len(repeaters))
		for i := range repeaters {
			round[i] = &varbind.VB{Name: current[i].Copy()}
		}
		if err := d.runBulkRound(round, info, context); err != nil {
			return nil, err
		}
		for i, vb := range round {
			out.Append(vb)
			if !vb.Value.IsException() {
				current[i] = vb.Name.Copy()
			}
		}
	}

	return pdu.NewResponse(req, pdu.NoError, 0, out), nil
}

func (d *Dispatcher) runBulkRound(vbs []*varbind.VB, info *handler.RequestInfo, context string) error {
	candidates := d.buildCandidates(vbs, info, context)
	return invokeBatches(candidates)
}

func (d *Dispatcher) runSet(req *pdu.PDU, context string) (*pdu.PDU, error) {
	info := &handler.RequestInfo{Mode: handler.ModeSetReserve1, SessionContext: context, TransactionID: uuid.New().String()}
	vbs := req.VarBindings.Slice()
	candidates := d.buildCandidates(vbs, info, context)

	regInfoCache := make(map[*registry.Registration]*handler.RegistrationInfo)
	invoke := func(m handler.Mode, _ []*handler.Request) error {
		i := 0
		for i < len(candidates) {
			if candidates[i].reg == nil {
				i++
				continue
			}
			j := i + 1
			for j < len(candidates) && candidates[j].reg == candidates[i].reg {
				j++
			}
			reg := candidates[i].reg
			ri, ok := regInfoCache[reg]
			if !ok {
				ri = &handler.RegistrationInfo{Name: reg.Name, Root: reg.Root, Context: reg.Context, Priority: reg.Priority}
				regInfoCache[reg] = ri
			}
			batch := make([]*handler.Request, 0, j-i)
			for k := i; k < j; k++ {
				batch = append(batch, candidates[k].req)
				candidates[k].req.Info = &handler.RequestInfo{Mode: m, SessionContext: context, TransactionID: info.TransactionID}
			}
			if err := reg.Chain.Invoke(ri, batch[0].Info, batch); err != nil {
				return err
			}
			i = j
		}
		return nil
	}

	if err := set.Run(invoke, nil); err != nil {
		return d.setErrorResponse(req, err, candidates), nil
	}
	return pdu.NewResponse(req, pdu.NoError, 0, req.VarBindings), nil
}

func (d *Dispatcher) setErrorResponse(req *pdu.PDU, err error, candidates []candidate) *pdu.PDU {
	status := pdu.GenErr
	switch {
	case errors.Is(err, set.ErrCommitFailed):
		status = pdu.CommitFailed
	case errors.Is(err, set.ErrUndoFailed):
		status = pdu.UndoFailed
	}

	index := 0
	for _, c := range candidates {
		if c.req.Status != 0 {
			status = pdu.ErrorStatus(c.req.Status)
			index = c.req.Index
			break
		}
	}
	return pdu.NewResponse(req, status, index, req.VarBindings)
}

func (d *Dispatcher) registerPending(txnID string, req *pdu.PDU, candidates []candidate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &pendingPDU{response: req}
	for _, c := range candidates {
		if c.req.Delegated {
			p.pending++
		}
	}
	d.inFlight[txnID] = p

	if d.DelegateTimeout > 0 {
		p.timer = time.AfterFunc(d.DelegateTimeout, func() {
			d.Trace.DelegateTimeout(txnID)
			d.cancel(txnID)
		})
	}
}

// Complete is called by a delegated handler's completion callback; once
// every delegated request for txnID has completed, the held PDU's
// response is finalized and returned for transmission by the caller.
func (d *Dispatcher) Complete(txnID string) (*pdu.PDU, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.inFlight[txnID]
	if !ok {
		return nil, false
	}
	p.pending--
	if p.pending > 0 {
		return nil, false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(d.inFlight, txnID)
	return pdu.NewResponse(p.response, pdu.NoError, 0, p.response.VarBindings), true
}

// cancel discards a timed-out delegated PDU, matching spec.md §5
// "discards late completions whose transaction id no longer refers to a
// live request."
func (d *Dispatcher) cancel(txnID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, txnID)
}
