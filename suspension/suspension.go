// Package suspension issues and expires borrowing suspensions and
// records staff dismissals of risk alerts.
package suspension

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"equiptrack/clock"
	"equiptrack/models"
	"equiptrack/store"
)

var (
	ErrAlreadySuspended = errors.New("student already has an active suspension")
	ErrEmptyReason      = errors.New("suspension reason must not be empty")
	ErrInvalidDuration  = errors.New("suspension duration must be positive")
	ErrInvalidCount     = errors.New("dismissal counts must be positive")
)

type Manager struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

func NewManager(st store.Store, clk clock.Clock, log zerolog.Logger) *Manager {
	return &Manager{store: st, clock: clk, log: log}
}

// Suspend restricts the student for durationDays, appends a suspension
// history entry and halves the stored trust score as an extra penalty,
// all in one transaction. A student already inside an unexpired
// suspension cannot be stacked; the caller should extend instead.
func (m *Manager) Suspend(ctx context.Context, studentID string, durationDays int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}
	if durationDays <= 0 {
		return ErrInvalidDuration
	}
	now := m.clock.Now()

	err := m.store.InTx(ctx, func(tx store.Store) error {
		s, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if s.IsBlacklisted && (s.BlacklistEndDate == nil || now.Before(*s.BlacklistEndDate)) {
			return ErrAlreadySuspended
		}

		// guarded on the flag we just read; a concurrent suspend or
		// expiry turns this into ErrConflict and rolls everything back
		end := now.AddDate(0, 0, durationDays)
		if err := tx.SetRestriction(ctx, s.ID, s.IsBlacklisted, true, &end, &reason); err != nil {
			return err
		}
		halved := s.TrustScore / 2
		if halved < 0 {
			halved = 0
		}
		if err := tx.SetTrustScore(ctx, s.ID, halved); err != nil {
			return err
		}
		return tx.CreateSuspension(ctx, &models.SuspensionEntry{
			ID:        uuid.NewString(),
			StudentID: s.ID,
			StartDate: now,
			EndDate:   end,
			Reason:    reason,
			IsActive:  true,
		})
	})
	if err != nil {
		return err
	}
	m.log.Info().Str("student", studentID).Int("days", durationDays).Msg("student suspended")
	return nil
}

// AutoExpire lifts every restriction whose end date has passed and
// deactivates the matching history entries. Safe to run redundantly;
// it reports how many students were released.
func (m *Manager) AutoExpire(ctx context.Context, now time.Time) (int, error) {
	expired, err := m.store.ListExpiredRestrictions(ctx, now)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, s := range expired {
		err := m.store.InTx(ctx, func(tx store.Store) error {
			if err := tx.ClearLapsedRestriction(ctx, s.ID, now); err != nil {
				return err
			}
			return tx.DeactivateSuspensions(ctx, s.ID)
		})
		if errors.Is(err, store.ErrConflict) {
			// renewed or already cleared since we listed it
			continue
		}
		if err != nil {
			return released, err
		}
		released++
	}
	if released > 0 {
		m.log.Info().Int("students", released).Msg("expired suspensions released")
	}
	return released, nil
}

// DismissAlert records that staff acknowledged the current alert for
// this exact late-return tally. Any further late return changes the
// tally and the alert resurfaces on the next scan.
func (m *Manager) DismissAlert(ctx context.Context, studentID string, lateReturnsCount, threshold int) error {
	if lateReturnsCount <= 0 || threshold <= 0 {
		return ErrInvalidCount
	}
	if _, err := m.store.GetStudent(ctx, studentID); err != nil {
		return err
	}
	exists, err := m.store.HasDismissal(ctx, studentID, lateReturnsCount, threshold)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.store.CreateDismissal(ctx, &models.DismissedNotification{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		LateReturnsCount: lateReturnsCount,
		WarningThreshold: threshold,
	})
}
