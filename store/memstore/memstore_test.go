package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/models"
	"equiptrack/store"
	"equiptrack/store/memstore"
)

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, st.CreateEquipment(ctx, &models.EquipmentItem{
		ID: "e1", ItemCode: "A", Status: models.StatusAvailable,
	}))

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx store.Store) error {
		if err := tx.SetEquipmentStatus(ctx, "e1", models.StatusAvailable, models.StatusBorrowed); err != nil {
			return err
		}
		if err := tx.CreateLoan(ctx, &models.Loan{ID: "l1", EquipmentID: "e1", StudentID: "s1", DueAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	it, err := st.GetEquipment(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, it.Status, "failed tx must leave no trace")

	_, err = st.GetLoan(ctx, "l1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, st.CreateEquipment(ctx, &models.EquipmentItem{
		ID: "e1", ItemCode: "A", Status: models.StatusAvailable,
	}))

	err := st.InTx(ctx, func(tx store.Store) error {
		return tx.SetEquipmentStatus(ctx, "e1", models.StatusAvailable, models.StatusRepair)
	})
	require.NoError(t, err)

	it, err := st.GetEquipment(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRepair, it.Status)
}

func TestGuardedUpdatesReportConflicts(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, st.CreateEquipment(ctx, &models.EquipmentItem{
		ID: "e1", ItemCode: "A", Status: models.StatusBorrowed,
	}))
	err := st.SetEquipmentStatus(ctx, "e1", models.StatusAvailable, models.StatusBorrowed)
	assert.ErrorIs(t, err, store.ErrConflict)

	now := time.Now().UTC()
	require.NoError(t, st.CreateLoan(ctx, &models.Loan{
		ID: "l1", EquipmentID: "e1", StudentID: "s1", DueAt: now,
	}))
	require.NoError(t, st.CloseLoan(ctx, "l1", now))
	assert.ErrorIs(t, st.CloseLoan(ctx, "l1", now), store.ErrConflict)

	require.NoError(t, st.ReopenLoan(ctx, "l1"))
	assert.ErrorIs(t, st.ReopenLoan(ctx, "l1"), store.ErrConflict)
}

func TestRestrictionWritesAreGuarded(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, st.CreateStudent(ctx, &models.Student{
		ID: "s1", StudentNo: "S-1", FullName: "Ada Park", YearGroup: "Y10", TrustScore: 100,
	}))

	end := time.Now().UTC().Add(24 * time.Hour)
	reason := "late returns"
	require.NoError(t, st.SetRestriction(ctx, "s1", false, true, &end, &reason))

	// a second flip expecting the old state loses
	err := st.SetRestriction(ctx, "s1", false, true, &end, &reason)
	assert.ErrorIs(t, err, store.ErrConflict)

	// the lapsed clear refuses while the end date is still ahead
	err = st.ClearLapsedRestriction(ctx, "s1", time.Now().UTC())
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, st.ClearLapsedRestriction(ctx, "s1", end.Add(time.Minute)))
	got, err := st.GetStudent(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.IsBlacklisted)
	assert.ErrorIs(t, st.ClearLapsedRestriction(ctx, "s1", end.Add(time.Minute)), store.ErrConflict)
}

func TestDuplicateDismissalIsNoOp(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, st.CreateDismissal(ctx, &models.DismissedNotification{
		ID: "d1", StudentID: "s1", LateReturnsCount: 3, WarningThreshold: 3,
	}))
	// same tally under a fresh id, as two racing dismissals would insert
	require.NoError(t, st.CreateDismissal(ctx, &models.DismissedNotification{
		ID: "d2", StudentID: "s1", LateReturnsCount: 3, WarningThreshold: 3,
	}))

	has, err := st.HasDismissal(ctx, "s1", 3, 3)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSecondOpenLoanPerItemRejected(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	now := time.Now().UTC()

	require.NoError(t, st.CreateLoan(ctx, &models.Loan{ID: "l1", EquipmentID: "e1", StudentID: "s1", DueAt: now}))
	err := st.CreateLoan(ctx, &models.Loan{ID: "l2", EquipmentID: "e1", StudentID: "s2", DueAt: now})
	assert.ErrorIs(t, err, store.ErrConflict)
}
