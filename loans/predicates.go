package loans

import (
	"time"

	"equiptrack/models"
)

// Loan classification, derived purely from timestamps. Exactly one
// state applies to any loan at any instant.
type State string

const (
	StateActive         State = "active"
	StateActiveOverdue  State = "active-overdue"
	StateReturnedOnTime State = "returned-on-time"
	StateReturnedLate   State = "returned-late"
)

// Overdue reports whether an open loan's due time has passed.
func Overdue(now time.Time, l *models.Loan) bool {
	return l.ReturnedAt == nil && now.After(l.DueAt)
}

// Late reports whether a closed loan came back after its due time.
func Late(l *models.Loan) bool {
	return l.ReturnedAt != nil && l.ReturnedAt.After(l.DueAt)
}

func Classify(now time.Time, l *models.Loan) State {
	switch {
	case l.ReturnedAt == nil && now.After(l.DueAt):
		return StateActiveOverdue
	case l.ReturnedAt == nil:
		return StateActive
	case l.ReturnedAt.After(l.DueAt):
		return StateReturnedLate
	default:
		return StateReturnedOnTime
	}
}
