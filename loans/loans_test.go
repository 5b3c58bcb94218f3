package loans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/clock"
	"equiptrack/loans"
	"equiptrack/models"
	"equiptrack/store"
	"equiptrack/store/memstore"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedStudent(t *testing.T, st *memstore.Store) *models.Student {
	t.Helper()
	s := &models.Student{
		ID:         uuid.NewString(),
		StudentNo:  "S-1001",
		FullName:   "Ada Park",
		YearGroup:  "Y10",
		TrustScore: 100,
	}
	require.NoError(t, st.CreateStudent(context.Background(), s))
	return s
}

func seedItem(t *testing.T, st *memstore.Store, code string) *models.EquipmentItem {
	t.Helper()
	it := &models.EquipmentItem{
		ID:       uuid.NewString(),
		ItemCode: code,
		Name:     "Basketball " + code,
		Category: "balls",
		Status:   models.StatusAvailable,
	}
	require.NoError(t, st.CreateEquipment(context.Background(), it))
	return it
}

func TestBorrowCreatesLoansAndFlipsStatus(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	a := seedItem(t, st, "BB-1")
	b := seedItem(t, st, "BB-2")

	created, err := m.Borrow(ctx, student.ID, []string{a.ID, b.ID}, 0, "staff-1")
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, l := range created {
		assert.Equal(t, t0, l.BorrowedAt)
		assert.Equal(t, t0.Add(loans.DefaultBorrowDuration), l.DueAt, "zero duration falls back to one hour")
		assert.True(t, l.DueAt.After(l.BorrowedAt) || l.DueAt.Equal(l.BorrowedAt))
		require.NotNil(t, l.BorrowedByUserID)
		assert.Equal(t, "staff-1", *l.BorrowedByUserID)
	}

	got, err := st.GetEquipment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBorrowed, got.Status)
}

func TestBorrowBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	m := loans.NewManager(st, clock.NewFake(t0))

	student := seedStudent(t, st)
	a := seedItem(t, st, "BB-1")
	b := seedItem(t, st, "BB-2")
	c := seedItem(t, st, "BB-3")

	// the middle item raced away
	require.NoError(t, st.SetEquipmentStatus(ctx, b.ID, models.StatusAvailable, models.StatusBorrowed))

	_, err := m.Borrow(ctx, student.ID, []string{a.ID, b.ID, c.ID}, time.Hour, "")
	var ue *loans.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, b.ID, ue.EquipmentID)

	// items 1 and 3 untouched, no loan rows created
	for _, id := range []string{a.ID, c.ID} {
		it, err := st.GetEquipment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAvailable, it.Status)
	}
	ls, err := st.ListLoans(ctx, store.LoanFilter{StudentID: student.ID})
	require.NoError(t, err)
	assert.Empty(t, ls)
}

func TestBorrowRejectsRestrictedStudent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	m := loans.NewManager(st, clock.NewFake(t0))

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	end := t0.Add(48 * time.Hour)
	reason := "repeated late returns"
	require.NoError(t, st.SetRestriction(ctx, student.ID, false, true, &end, &reason))

	_, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	var re *loans.RestrictedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "repeated late returns", re.Reason)
	require.NotNil(t, re.EndDate)
	assert.Equal(t, end, *re.EndDate)
}

func TestBorrowAllowedAfterRestrictionLapsed(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	end := t0.Add(-time.Minute)
	reason := "old ban"
	require.NoError(t, st.SetRestriction(ctx, student.ID, false, true, &end, &reason))

	// flag still set but the end date has passed
	_, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)
}

func TestReturnOnTime(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)

	clk.Advance(30 * time.Minute)
	receipt, err := m.Return(ctx, created[0].ID)
	require.NoError(t, err)
	assert.False(t, receipt.Late)
	assert.Equal(t, t0.Add(30*time.Minute), receipt.ReturnedAt)

	it, err := st.GetEquipment(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, it.Status)

	s, err := st.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, s.TrustScore, "on-time returns must not touch trust")
}

func TestLateReturnDecaysTrust(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	receipt, err := m.Return(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, receipt.Late)

	s, err := st.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, s.TrustScore)
}

func TestReturnTwiceFailsCleanly(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)

	_, err = m.Return(ctx, created[0].ID)
	require.NoError(t, err)
	_, err = m.Return(ctx, created[0].ID)
	assert.ErrorIs(t, err, loans.ErrInvalidState)
}

func TestUndoReturnRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)

	before, err := st.GetLoan(ctx, created[0].ID)
	require.NoError(t, err)
	studentBefore, err := st.GetStudent(ctx, student.ID)
	require.NoError(t, err)

	clk.Advance(3 * time.Hour) // well past due
	receipt, err := m.Return(ctx, created[0].ID)
	require.NoError(t, err)
	require.True(t, receipt.Late)

	require.NoError(t, m.UndoReturn(ctx, created[0].ID))

	after, err := st.GetLoan(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "undo must restore the loan exactly")

	it, err := st.GetEquipment(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBorrowed, it.Status)

	studentAfter, err := st.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, studentBefore.TrustScore, studentAfter.TrustScore,
		"the late penalty must be compensated")
}

func TestUndoReturnTwiceIsInvalidState(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	student := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, student.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)
	_, err = m.Return(ctx, created[0].ID)
	require.NoError(t, err)

	require.NoError(t, m.UndoReturn(ctx, created[0].ID))
	err = m.UndoReturn(ctx, created[0].ID)
	assert.ErrorIs(t, err, loans.ErrInvalidState)
}

func TestUndoReturnConflictsWhenItemReborrowed(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	clk := clock.NewFake(t0)
	m := loans.NewManager(st, clk)

	ada := seedStudent(t, st)
	item := seedItem(t, st, "BB-1")

	created, err := m.Borrow(ctx, ada.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)
	_, err = m.Return(ctx, created[0].ID)
	require.NoError(t, err)

	// someone else takes the item before the undo
	other := &models.Student{ID: uuid.NewString(), StudentNo: "S-1002", FullName: "Ben Ito", YearGroup: "Y9", TrustScore: 100}
	require.NoError(t, st.CreateStudent(ctx, other))
	_, err = m.Borrow(ctx, other.ID, []string{item.ID}, time.Hour, "")
	require.NoError(t, err)

	err = m.UndoReturn(ctx, created[0].ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrConflict))

	// the failed undo must not have reopened anything
	l, err := st.GetLoan(ctx, created[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, l.ReturnedAt)
}

func TestBorrowWithoutEquipment(t *testing.T) {
	st := memstore.New()
	m := loans.NewManager(st, clock.NewFake(t0))
	student := seedStudent(t, st)

	_, err := m.Borrow(context.Background(), student.ID, nil, time.Hour, "")
	assert.ErrorIs(t, err, loans.ErrNoEquipment)
}
