package table

import "github.com/pkg/errors"

// RowStatus mirrors the SMI RowStatus textual convention's named values
// (original_source/Firmware/Core/TextualConvention.c), plus the two
// states ("nonExistent", "notReady") that only appear as a current-state
// input to the transition check and are never themselves a valid SET
// target.
type RowStatus int

const (
	RowNonExistent RowStatus = iota
	RowActive
	RowNotInService
	RowNotReady
	RowCreateAndGo
	RowCreateAndWait
	RowDestroy
)

func (s RowStatus) String() string {
	switch s {
	case RowNonExistent:
		return "nonExistent"
	case RowActive:
		return "active"
	case RowNotInService:
		return "notInService"
	case RowNotReady:
		return "notReady"
	case RowCreateAndGo:
		return "createAndGo"
	case RowCreateAndWait:
		return "createAndWait"
	case RowDestroy:
		return "destroy"
	}
	return "unknown"
}

// ErrInconsistentValue is returned for any transition not permitted by the
// matrix, matching spec.md §4.6/§4.8's InconsistentValue error.
var ErrInconsistentValue = errors.New("table: inconsistent row status transition")

// CheckRowStatus validates a requested RowStatus transition against
// spec.md's GLOSSARY matrix: createAndGo/createAndWait are only valid
// from nonExistent; active is valid from notReady/notInService/active;
// notInService is valid from notInService/active; destroy is valid from
// any current state; every other combination is InconsistentValue.
func CheckRowStatus(from, to RowStatus) error {
	switch to {
	case RowCreateAndGo, RowCreateAndWait:
		if from == RowNonExistent {
			return nil
		}
	case RowActive:
		if from == RowNotReady || from == RowNotInService || from == RowActive {
			return nil
		}
	case RowNotInService:
		if from == RowNotInService || from == RowActive {
			return nil
		}
	case RowDestroy:
		return nil
	}
	return ErrInconsistentValue
}

// StorageType mirrors the SMI StorageType TC's relevant values for the
// additional rule spec.md §4.6 layers on top of the RowStatus matrix.
type StorageType int

const (
	StorageOther StorageType = iota
	StorageVolatile
	StorageNonVolatile
	StoragePermanent
	StorageReadOnly
)

// ErrNotWritable is returned when a storage-type rule forbids a row
// status transition regardless of what the RowStatus matrix alone would
// allow.
var ErrNotWritable = errors.New("table: row storage type forbids this transition")

// CheckStorageType enforces spec.md §4.6's additional rule: rows with
// storage permanent or readOnly may not be destroyed, and may not
// transition to or from those storage types.
func CheckStorageType(current, requested StorageType, to RowStatus) error {
	locked := current == StoragePermanent || current == StorageReadOnly
	if locked && to == RowDestroy {
		return ErrNotWritable
	}
	if current != requested && (locked || requested == StoragePermanent || requested == StorageReadOnly) {
		return ErrNotWritable
	}
	return nil
}
