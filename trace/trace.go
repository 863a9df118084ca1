// Package trace provides the agent's ambient logging hooks, generalizing
// the teacher's per-component ServerHooks/LoggingHooks struct-of-funcs
// (damianoneill-net/v2/snmp/serverhooks.go, sessionfactory.go) into the
// three hook groups this agent core exercises: dispatch, registry, and
// the set state machine. Each group ships Default/Diagnostic/NoOp
// variants and is merged against NoOp via mergo so a caller only needs to
// set the hooks it cares about.
package trace

import (
	"encoding/hex"
	"log"

	"github.com/imdario/mergo"

	"github.com/damianoneill/priotagent/oid"
)

// DispatchTrace instruments the dispatch loop: message receive/send,
// per-VB lookup outcomes, and delegation/timeout events.
type DispatchTrace struct {
	ReadComplete     func(input []byte, err error)
	WriteComplete    func(output []byte, err error)
	VarBindResolved  func(name oid.OID, context string, matched bool)
	Delegated        func(transactionID string)
	DelegateTimeout  func(transactionID string)
	Error            func(err error)
}

// DefaultDispatchTrace logs only errors, matching the teacher's
// DefaultServerHooks/DefaultLoggingHooks tier.
var DefaultDispatchTrace = &DispatchTrace{
	Error: func(err error) { log.Printf("dispatch: error: %v", err) },
}

// DiagnosticDispatchTrace logs every event, with payload hex dumps.
var DiagnosticDispatchTrace = &DispatchTrace{
	ReadComplete: func(input []byte, err error) {
		log.Printf("dispatch: read complete err:%v data:%s", err, hex.EncodeToString(input))
	},
	WriteComplete: func(output []byte, err error) {
		log.Printf("dispatch: write complete err:%v data:%s", err, hex.EncodeToString(output))
	},
	VarBindResolved: func(name oid.OID, context string, matched bool) {
		log.Printf("dispatch: resolved %s context:%q matched:%v", name, context, matched)
	},
	Delegated:       func(transactionID string) { log.Printf("dispatch: delegated txn:%s", transactionID) },
	DelegateTimeout: func(transactionID string) { log.Printf("dispatch: delegate timeout txn:%s", transactionID) },
	Error:           func(err error) { log.Printf("dispatch: error: %v", err) },
}

// NoOpDispatchTrace discards every event.
var NoOpDispatchTrace = &DispatchTrace{
	ReadComplete:    func([]byte, error) {},
	WriteComplete:   func([]byte, error) {},
	VarBindResolved: func(oid.OID, string, bool) {},
	Delegated:       func(string) {},
	DelegateTimeout: func(string) {},
	Error:           func(error) {},
}

// WithDefaults fills any nil hook in t from NoOpDispatchTrace via mergo,
// the same "merge against NoOp" pattern as sessionfactory.go.
func (t *DispatchTrace) WithDefaults() *DispatchTrace {
	_ = mergo.Merge(t, NoOpDispatchTrace)
	return t
}

// RegistryTrace instruments subtree registration/unregistration.
type RegistryTrace struct {
	Registered   func(name string, root oid.OID, priority int)
	Unregistered func(name string, root oid.OID, priority int)
	Rejected     func(name string, root oid.OID, err error)
}

// DefaultRegistryTrace logs only rejections.
var DefaultRegistryTrace = &RegistryTrace{
	Rejected: func(name string, root oid.OID, err error) {
		log.Printf("registry: rejected %s at %s: %v", name, root, err)
	},
}

// DiagnosticRegistryTrace logs every registration event.
var DiagnosticRegistryTrace = &RegistryTrace{
	Registered: func(name string, root oid.OID, priority int) {
		log.Printf("registry: registered %s at %s priority:%d", name, root, priority)
	},
	Unregistered: func(name string, root oid.OID, priority int) {
		log.Printf("registry: unregistered %s at %s priority:%d", name, root, priority)
	},
	Rejected: func(name string, root oid.OID, err error) {
		log.Printf("registry: rejected %s at %s: %v", name, root, err)
	},
}

// NoOpRegistryTrace discards every event.
var NoOpRegistryTrace = &RegistryTrace{
	Registered:   func(string, oid.OID, int) {},
	Unregistered: func(string, oid.OID, int) {},
	Rejected:     func(string, oid.OID, error) {},
}

// WithDefaults fills any nil hook in t from NoOpRegistryTrace.
func (t *RegistryTrace) WithDefaults() *RegistryTrace {
	_ = mergo.Merge(t, NoOpRegistryTrace)
	return t
}

// SetTrace instruments the seven-phase SET state machine.
type SetTrace struct {
	PhaseEntered func(mode string)
	PhaseFailed  func(mode string, err error)
	Rollback     func(reason error)
}

// DefaultSetTrace logs only failures and rollbacks.
var DefaultSetTrace = &SetTrace{
	PhaseFailed: func(mode string, err error) { log.Printf("set: phase %s failed: %v", mode, err) },
	Rollback:    func(reason error) { log.Printf("set: rollback: %v", reason) },
}

// DiagnosticSetTrace logs every phase transition.
var DiagnosticSetTrace = &SetTrace{
	PhaseEntered: func(mode string) { log.Printf("set: entering phase %s", mode) },
	PhaseFailed:  func(mode string, err error) { log.Printf("set: phase %s failed: %v", mode, err) },
	Rollback:     func(reason error) { log.Printf("set: rollback: %v", reason) },
}

// NoOpSetTrace discards every event.
var NoOpSetTrace = &SetTrace{
	PhaseEntered: func(string) {},
	PhaseFailed:  func(string, error) {},
	Rollback:     func(error) {},
}

// WithDefaults fills any nil hook in t from NoOpSetTrace.
func (t *SetTrace) WithDefaults() *SetTrace {
	_ = mergo.Merge(t, NoOpSetTrace)
	return t
}
