// Package store defines the narrow repository contract the engine runs
// against: get-by-id, list-with-filter, insert, and guarded updates that
// report conflicts instead of silently matching zero rows.
package store

import (
	"context"
	"errors"
	"time"

	"equiptrack/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a guarded update matched zero rows: the row was
	// changed concurrently or is not in the expected state. The caller
	// should retry the whole operation.
	ErrConflict = errors.New("concurrent update conflict")
)

// LoanFilter narrows ListLoans. Status is "", "open" or "returned".
type LoanFilter struct {
	StudentID   string
	EquipmentID string
	Status      string
}

// EquipmentWithLoan pairs an item with its open loan and borrower, when
// the item is currently out.
type EquipmentWithLoan struct {
	Item     models.EquipmentItem `json:"item"`
	OpenLoan *models.Loan         `json:"openLoan,omitempty"`
	Borrower *models.Student      `json:"borrower,omitempty"`
}

type Store interface {
	// InTx runs fn against a transactional view of the store. Every
	// write inside fn applies atomically, or not at all if fn errors.
	InTx(ctx context.Context, fn func(Store) error) error

	// Users (staff)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchUserLogin(ctx context.Context, id string) error
	TouchUserSeen(ctx context.Context, id string) error

	// Students
	CreateStudent(ctx context.Context, s *models.Student) error
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudents(ctx context.Context, query string) ([]models.Student, error)
	SetTrustScore(ctx context.Context, studentID string, score int) error
	// SetRestriction flips the blacklist flag from -> to; ErrConflict
	// if the row is not currently in the from state.
	SetRestriction(ctx context.Context, studentID string, from, to bool, end *time.Time, reason *string) error
	// ClearLapsedRestriction lifts a restriction whose end date has
	// passed; ErrConflict if it was renewed or cleared concurrently.
	ClearLapsedRestriction(ctx context.Context, studentID string, now time.Time) error
	ListExpiredRestrictions(ctx context.Context, now time.Time) ([]models.Student, error)

	// Equipment
	CreateEquipment(ctx context.Context, it *models.EquipmentItem) error
	GetEquipment(ctx context.Context, id string) (*models.EquipmentItem, error)
	ListEquipment(ctx context.Context, category, status string) ([]models.EquipmentItem, error)
	// ListEquipmentWithLoan joins each item with its open loan and the
	// borrowing student, if any.
	ListEquipmentWithLoan(ctx context.Context, category, status string) ([]EquipmentWithLoan, error)
	// SetEquipmentStatus flips status from -> to; ErrConflict if the
	// item is not currently in the from state.
	SetEquipmentStatus(ctx context.Context, id, from, to string) error

	// Loans
	CreateLoan(ctx context.Context, l *models.Loan) error
	GetLoan(ctx context.Context, id string) (*models.Loan, error)
	ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error)
	// CloseLoan sets returned_at; ErrConflict unless the loan is open.
	CloseLoan(ctx context.Context, id string, returnedAt time.Time) error
	// ReopenLoan clears returned_at; ErrConflict unless the loan is closed.
	ReopenLoan(ctx context.Context, id string) error
	// CountLateReturns counts loans returned after their due time,
	// restricted to returns after since when non-nil.
	CountLateReturns(ctx context.Context, studentID string, since *time.Time) (int, error)
	CountOpenOverdue(ctx context.Context, studentID string, now time.Time) (int, error)
	CountLoans(ctx context.Context, studentID string) (open int, total int, err error)

	// Suspensions (append-only)
	CreateSuspension(ctx context.Context, e *models.SuspensionEntry) error
	CountSuspensions(ctx context.Context, studentID string) (int, error)
	LastSuspensionEnd(ctx context.Context, studentID string) (*time.Time, error)
	DeactivateSuspensions(ctx context.Context, studentID string) error

	// Dismissed notifications
	CreateDismissal(ctx context.Context, d *models.DismissedNotification) error
	HasDismissal(ctx context.Context, studentID string, lateCount, threshold int) (bool, error)
}
