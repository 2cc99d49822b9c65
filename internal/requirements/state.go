// Package requirements tracks the documents attached to a request: uploads by
// the graduate, downloads, and the accept/reject review done by faculty staff.
package requirements

import (
	"errors"
	"fmt"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// State is the lifecycle position of one requirement item
type State string

const (
	StateNoFile    State = "NO_FILE"
	StateUploading State = "UPLOADING"
	StateUploaded  State = "UPLOADED"
	StateReviewing State = "REVIEWING"
	StateAccepted  State = "ACCEPTED"
	StateRejected  State = "REJECTED"
)

// InFlight reports whether a remote call is pending for the item
func (s State) InFlight() bool {
	return s == StateUploading || s == StateReviewing
}

// Outcome records how the last operation on an item ended
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeUploadError Outcome = "UPLOAD_ERROR"
	OutcomeReviewError Outcome = "REVIEW_ERROR"
)

// EventKind names what happened to an item
type EventKind string

const (
	EventUploadStarted  EventKind = "upload_started"
	EventUploadFinished EventKind = "upload_finished"
	EventReviewStarted  EventKind = "review_started"
	EventReviewFinished EventKind = "review_finished"
)

// Event is an input of Transition. Finished events carry the record as it
// stands afterwards: the server's answer on success, the unchanged record on
// failure.
type Event struct {
	Kind   EventKind
	Record models.RequirementItem
}

// ErrInvalidTransition is returned for events the current state does not accept
var ErrInvalidTransition = errors.New("invalid requirement transition")

// StateOf derives the settled state of a record
func StateOf(item models.RequirementItem) State {
	switch {
	case item.IsAccepted():
		return StateAccepted
	case item.IsRejected():
		return StateRejected
	case item.HasFile():
		return StateUploaded
	default:
		return StateNoFile
	}
}

// Transition returns the state that follows ev. Only settled states accept a
// new upload; only an uploaded, unreviewed item can be reviewed.
func Transition(from State, ev Event) (State, error) {
	switch ev.Kind {
	case EventUploadStarted:
		if !from.InFlight() {
			return StateUploading, nil
		}
	case EventReviewStarted:
		if from == StateUploaded {
			return StateReviewing, nil
		}
	case EventUploadFinished:
		if from == StateUploading {
			return StateOf(ev.Record), nil
		}
	case EventReviewFinished:
		if from == StateReviewing {
			return StateOf(ev.Record), nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.Kind, from)
}
