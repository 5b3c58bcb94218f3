// Package loans implements the loan lifecycle: batch borrow, return
// with late detection, and undo of a just-completed return.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiptrack/clock"
	"equiptrack/models"
	"equiptrack/risk"
	"equiptrack/store"
)

// DefaultBorrowDuration applies when the caller does not supply one.
const DefaultBorrowDuration = time.Hour

var (
	ErrNoEquipment = errors.New("no equipment selected")

	// ErrInvalidState: the loan is not eligible for the requested
	// transition (e.g. undoing a return twice).
	ErrInvalidState = errors.New("loan not in a valid state for this operation")
)

// RestrictedError rejects a borrow while the student is suspended. It
// carries the reason and end date so the caller can render them.
type RestrictedError struct {
	StudentID string
	Reason    string
	EndDate   *time.Time
}

func (e *RestrictedError) Error() string {
	return fmt.Sprintf("student %s is currently restricted from borrowing", e.StudentID)
}

// UnavailableError rejects a borrow of an item that is not available.
type UnavailableError struct {
	EquipmentID string
	Status      string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("equipment %s is %s, not available", e.EquipmentID, e.Status)
}

// Receipt confirms a return and tells the UI whether it was late, so it
// can offer the undo affordance with the right message.
type Receipt struct {
	Loan       models.Loan `json:"loan"`
	Late       bool        `json:"late"`
	ReturnedAt time.Time   `json:"returnedAt"`
}

type Manager struct {
	store store.Store
	clock clock.Clock
}

func NewManager(st store.Store, clk clock.Clock) *Manager {
	return &Manager{store: st, clock: clk}
}

// Borrow checks out every listed item to the student in one atomic
// unit: if any item is unavailable or raced away, no loan is created
// and no status flips. Duration <= 0 falls back to the default hour.
func (m *Manager) Borrow(ctx context.Context, studentID string, equipmentIDs []string, duration time.Duration, byUserID string) ([]models.Loan, error) {
	if len(equipmentIDs) == 0 {
		return nil, ErrNoEquipment
	}
	if duration <= 0 {
		duration = DefaultBorrowDuration
	}
	now := m.clock.Now()

	var created []models.Loan
	err := m.store.InTx(ctx, func(tx store.Store) error {
		student, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if restricted(student, now) {
			re := &RestrictedError{StudentID: student.ID}
			if student.BlacklistReason != nil {
				re.Reason = *student.BlacklistReason
			}
			re.EndDate = student.BlacklistEndDate
			return re
		}

		created = created[:0]
		for _, eqID := range equipmentIDs {
			it, err := tx.GetEquipment(ctx, eqID)
			if err != nil {
				return err
			}
			if it.Status != models.StatusAvailable {
				return &UnavailableError{EquipmentID: it.ID, Status: it.Status}
			}
			// guarded flip; a concurrent borrow surfaces as ErrConflict
			if err := tx.SetEquipmentStatus(ctx, it.ID, models.StatusAvailable, models.StatusBorrowed); err != nil {
				return err
			}
			loan := models.Loan{
				ID:          uuid.NewString(),
				StudentID:   student.ID,
				EquipmentID: it.ID,
				BorrowedAt:  now,
				DueAt:       now.Add(duration),
				Status:      models.LoanActive,
			}
			if byUserID != "" {
				by := byUserID
				loan.BorrowedByUserID = &by
			}
			if err := tx.CreateLoan(ctx, &loan); err != nil {
				return err
			}
			created = append(created, loan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Return closes an open loan, releases the item and, when the return
// is late, decays the student's trust score in the same transaction.
func (m *Manager) Return(ctx context.Context, loanID string) (*Receipt, error) {
	now := m.clock.Now()
	var receipt *Receipt
	err := m.store.InTx(ctx, func(tx store.Store) error {
		l, err := tx.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if l.ReturnedAt != nil {
			return ErrInvalidState
		}
		if err := tx.CloseLoan(ctx, l.ID, now); err != nil {
			return err
		}
		if err := tx.SetEquipmentStatus(ctx, l.EquipmentID, models.StatusBorrowed, models.StatusAvailable); err != nil {
			return err
		}
		late := now.After(l.DueAt)
		if late {
			if err := m.recomputeTrust(ctx, tx, l.StudentID); err != nil {
				return err
			}
		}
		l.ReturnedAt = &now
		l.Status = models.LoanReturned
		receipt = &Receipt{Loan: *l, Late: late, ReturnedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// UndoReturn reverses a just-completed return: the loan reopens, the
// item flips back to borrowed, and a late return's trust penalty is
// compensated. Undoing twice, or undoing an open loan, fails with
// ErrInvalidState.
func (m *Manager) UndoReturn(ctx context.Context, loanID string) error {
	return m.store.InTx(ctx, func(tx store.Store) error {
		l, err := tx.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if l.ReturnedAt == nil {
			return ErrInvalidState
		}
		wasLate := l.ReturnedAt.After(l.DueAt)
		if err := tx.ReopenLoan(ctx, l.ID); err != nil {
			return err
		}
		if err := tx.SetEquipmentStatus(ctx, l.EquipmentID, models.StatusAvailable, models.StatusBorrowed); err != nil {
			return err
		}
		if wasLate {
			return m.recomputeTrust(ctx, tx, l.StudentID)
		}
		return nil
	})
}

// recomputeTrust rewrites the cached trust score from the lifetime
// late-return counter, inside the caller's transaction.
func (m *Manager) recomputeTrust(ctx context.Context, tx store.Store, studentID string) error {
	total, err := tx.CountLateReturns(ctx, studentID, nil)
	if err != nil {
		return err
	}
	return tx.SetTrustScore(ctx, studentID, risk.TrustScore(total))
}

func restricted(s *models.Student, now time.Time) bool {
	if !s.IsBlacklisted {
		return false
	}
	return s.BlacklistEndDate == nil || now.Before(*s.BlacklistEndDate)
}
