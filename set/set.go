// Package set drives the seven-phase SET transaction sequence over a
// batch of requests, generalizing original_source/Firmware/Priotlib/
// AgentHandler.c's Handler_handleSetRequests phase loop.
package set

import (
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/handler"
)

// ErrCommitFailed is surfaced when a handler errors during SET_COMMIT,
// per spec.md §4.6 "surface CommitFailed" regardless of the handler's own
// error value.
var ErrCommitFailed = errors.New("set: commit failed")

// ErrUndoFailed is surfaced when a handler errors while itself being
// asked to undo a prior phase -- a second failure on top of the one that
// triggered the rollback.
var ErrUndoFailed = errors.New("set: undo failed")

// Invoke drives one phase of a chain against a batch of requests -- in
// practice handler.Chain.Invoke bound to a RegistrationInfo, or a
// dispatcher's per-registration fan-out across several chains sharing one
// PDU.
type Invoke func(mode handler.Mode, requests []*handler.Request) error

// Run drives requests through RESERVE1 -> RESERVE2 -> ACTION -> COMMIT on
// the happy path, honoring spec.md §4.6's rollback rules:
//
//   - an error in RESERVE1/RESERVE2 runs FREE over every request and
//     aborts, returning the original error;
//   - an error in ACTION runs UNDO then FREE over every request and
//     aborts, returning the original error (or ErrUndoFailed if UNDO
//     itself errors);
//   - an error in COMMIT runs UNDO over every request and aborts,
//     returning ErrCommitFailed (or ErrUndoFailed if UNDO itself errors).
func Run(invoke Invoke, requests []*handler.Request) error {
	if err := invoke(handler.ModeSetReserve1, requests); err != nil {
		free(invoke, requests)
		return err
	}
	if err := invoke(handler.ModeSetReserve2, requests); err != nil {
		free(invoke, requests)
		return err
	}

	if err := invoke(handler.ModeSetAction, requests); err != nil {
		if uErr := invoke(handler.ModeSetUndo, requests); uErr != nil {
			free(invoke, requests)
			return errors.Wrap(ErrUndoFailed, uErr.Error())
		}
		free(invoke, requests)
		return err
	}

	if err := invoke(handler.ModeSetCommit, requests); err != nil {
		if uErr := invoke(handler.ModeSetUndo, requests); uErr != nil {
			return errors.Wrap(ErrUndoFailed, uErr.Error())
		}
		return errors.Wrap(ErrCommitFailed, err.Error())
	}

	return nil
}

func free(invoke Invoke, requests []*handler.Request) {
	_ = invoke(handler.ModeSetFree, requests)
}
