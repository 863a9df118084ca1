// Package pdu implements the Protocol Data Unit envelope (spec.md §3) and
// its wire framing, generalizing the teacher's client-only Get/GetNext/
// GetBulk message set (damianoneill-net/v2/snmp/session.go) to the full
// PDU type set an agent core must decode and encode, including the
// internal SET sub-phase markers used by the set/ package.
package pdu

import "github.com/damianoneill/priotagent/varbind"

// Type identifies the kind of PDU, matching spec.md §3's pduType domain.
// The seven Internal* values never appear on the wire; the dispatch/set
// packages use them to label a PDU mid-flight through the seven-phase SET
// state machine.
type Type int

const (
	TypeGet Type = iota
	TypeGetNext
	TypeGetBulk
	TypeResponse
	TypeSet
	TypeTrap
	TypeNotification

	TypeInternalSetBegin
	TypeInternalSetReserve1
	TypeInternalSetReserve2
	TypeInternalSetAction
	TypeInternalSetCommit
	TypeInternalSetFree
	TypeInternalSetUndo
)

// String names a Type for logging.
func (t Type) String() string {
	switch t {
	case TypeGet:
		return "Get"
	case TypeGetNext:
		return "GetNext"
	case TypeGetBulk:
		return "GetBulk"
	case TypeResponse:
		return "Response"
	case TypeSet:
		return "Set"
	case TypeTrap:
		return "Trap"
	case TypeNotification:
		return "Notification"
	case TypeInternalSetBegin:
		return "InternalSetBegin"
	case TypeInternalSetReserve1:
		return "InternalSetReserve1"
	case TypeInternalSetReserve2:
		return "InternalSetReserve2"
	case TypeInternalSetAction:
		return "InternalSetAction"
	case TypeInternalSetCommit:
		return "InternalSetCommit"
	case TypeInternalSetFree:
		return "InternalSetFree"
	case TypeInternalSetUndo:
		return "InternalSetUndo"
	}
	return "Unknown"
}

// ErrorStatus is the PDU-level error code, per spec.md §7's taxonomy.
type ErrorStatus int

const (
	NoError ErrorStatus = iota
	TooBig
	NoSuchName
	BadValue
	ReadOnly
	GenErr
	NoAccess
	WrongType
	WrongLength
	WrongEncoding
	WrongValue
	NoCreation
	InconsistentValue
	ResourceUnavailable
	CommitFailed
	UndoFailed
	AuthorizationError
	NotWritable
	InconsistentName
)

// PDU is the protocol data unit exchanged between transport and dispatch,
// matching spec.md §3's field list exactly (`version, requestId,
// errorStatus, errorIndex, transactionId, contextName, variableBindings,
// community/securityParameters, pduType`).
type PDU struct {
	Version        int
	RequestID      int32
	ErrorStatus    ErrorStatus
	ErrorIndex     int
	TransactionID  string
	ContextName    string
	VarBindings    *varbind.VarList
	Community      []byte
	SecurityParams []byte
	Type           Type

	// NonRepeaters/MaxRepetitions carry GetBulk's extra parameters, which
	// are wire-aliased onto ErrorStatus/ErrorIndex exactly as the teacher's
	// rawPDU does (session.go buildPacket: "pdu.Error = nonRepeaters").
	NonRepeaters   int
	MaxRepetitions int
}

// NewRequest builds a PDU for an outbound/incoming request of the given
// type over the given variable bindings.
func NewRequest(typ Type, requestID int32, vbs *varbind.VarList) *PDU {
	return &PDU{Type: typ, RequestID: requestID, VarBindings: vbs}
}

// NewResponse builds a response PDU correlated to req, carrying the
// supplied error status/index and result bindings.
func NewResponse(req *PDU, status ErrorStatus, index int, vbs *varbind.VarList) *PDU {
	return &PDU{
		Version:       req.Version,
		RequestID:     req.RequestID,
		ErrorStatus:   status,
		ErrorIndex:    index,
		TransactionID: req.TransactionID,
		ContextName:   req.ContextName,
		VarBindings:   vbs,
		Community:     req.Community,
		Type:          TypeResponse,
	}
}
