package risk

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equiptrack/clock"
	"equiptrack/models"
	"equiptrack/store"
)

// AtRiskStudent is one row of the scan result, carrying everything the
// notification UI needs to render and act on the alert.
type AtRiskStudent struct {
	Student                    models.Student `json:"student"`
	LateReturnsSinceSuspension int            `json:"lateReturnsSinceSuspension"`
	TotalSuspensions           int            `json:"totalSuspensions"`
	WarningThreshold           int            `json:"warningThreshold"`
}

// Expirer releases lapsed suspensions; it runs before every scan so the
// scan never evaluates stale restriction state.
type Expirer interface {
	AutoExpire(ctx context.Context, now time.Time) (int, error)
}

type Scanner struct {
	store   store.Store
	clock   clock.Clock
	expirer Expirer
	log     zerolog.Logger
}

func NewScanner(st store.Store, clk clock.Clock, exp Expirer, log zerolog.Logger) *Scanner {
	return &Scanner{store: st, clock: clk, expirer: exp, log: log}
}

// ScanAtRisk walks every student and reports those whose late-return
// count since their last suspension has reached their current warning
// threshold, skipping alerts staff already dismissed at exactly that
// count. The scan recomputes everything from current state; results are
// ordered by student name.
func (s *Scanner) ScanAtRisk(ctx context.Context) ([]AtRiskStudent, error) {
	now := s.clock.Now()
	if _, err := s.expirer.AutoExpire(ctx, now); err != nil {
		return nil, err
	}

	students, err := s.store.ListStudents(ctx, "")
	if err != nil {
		return nil, err
	}

	var out []AtRiskStudent
	for _, st := range students {
		suspensions, err := s.store.CountSuspensions(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		threshold := WarningThreshold(suspensions)

		lateSince, err := s.LateReturnsSinceLastSuspension(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		if lateSince < threshold {
			continue
		}

		dismissed, err := s.store.HasDismissal(ctx, st.ID, lateSince, threshold)
		if err != nil {
			return nil, err
		}
		if dismissed {
			continue
		}

		out = append(out, AtRiskStudent{
			Student:                    st,
			LateReturnsSinceSuspension: lateSince,
			TotalSuspensions:           suspensions,
			WarningThreshold:           threshold,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Student.FullName < out[j].Student.FullName })
	return out, nil
}

// LateReturnsSinceLastSuspension counts returned-late loans windowed to
// after the most recent suspension's end date, or all time if the
// student has never been suspended.
func (s *Scanner) LateReturnsSinceLastSuspension(ctx context.Context, studentID string) (int, error) {
	since, err := s.store.LastSuspensionEnd(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return s.store.CountLateReturns(ctx, studentID, since)
}

// Run scans on a fixed interval until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			atRisk, err := s.ScanAtRisk(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("risk scan failed")
				continue
			}
			if len(atRisk) > 0 {
				s.log.Info().Int("students", len(atRisk)).Msg("at-risk students pending review")
			}
		}
	}
}
