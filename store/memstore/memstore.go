// Package memstore is an in-memory store.Store. Transactions run
// against a deep copy of the state and swap it in on success, so
// all-or-nothing semantics hold exactly.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"equiptrack/models"
	"equiptrack/store"
)

type state struct {
	users       map[string]*models.User
	students    map[string]*models.Student
	equipment   map[string]*models.EquipmentItem
	loans       map[string]*models.Loan
	suspensions map[string]*models.SuspensionEntry
	dismissals  map[string]*models.DismissedNotification
}

func newState() *state {
	return &state{
		users:       map[string]*models.User{},
		students:    map[string]*models.Student{},
		equipment:   map[string]*models.EquipmentItem{},
		loans:       map[string]*models.Loan{},
		suspensions: map[string]*models.SuspensionEntry{},
		dismissals:  map[string]*models.DismissedNotification{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		u := *v
		u.LastLoginAt = copyTime(v.LastLoginAt)
		u.LastSeenAt = copyTime(v.LastSeenAt)
		c.users[k] = &u
	}
	for k, v := range s.students {
		st := *v
		st.BlacklistEndDate = copyTime(v.BlacklistEndDate)
		st.BlacklistReason = copyStr(v.BlacklistReason)
		c.students[k] = &st
	}
	for k, v := range s.equipment {
		it := *v
		c.equipment[k] = &it
	}
	for k, v := range s.loans {
		l := *v
		l.ReturnedAt = copyTime(v.ReturnedAt)
		l.BorrowedByUserID = copyStr(v.BorrowedByUserID)
		c.loans[k] = &l
	}
	for k, v := range s.suspensions {
		e := *v
		c.suspensions[k] = &e
	}
	for k, v := range s.dismissals {
		d := *v
		c.dismissals[k] = &d
	}
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

type Store struct {
	mu sync.Mutex
	st *state
	tx bool
}

func New() *Store { return &Store{st: newState()} }

var _ store.Store = (*Store)(nil)

func (m *Store) InTx(_ context.Context, fn func(store.Store) error) error {
	if m.tx {
		// already transactional; nested calls share the snapshot
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	child := &Store{st: m.st.clone(), tx: true}
	if err := fn(child); err != nil {
		return err
	}
	m.st = child.st
	return nil
}

func (m *Store) lock() func() {
	if m.tx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// Users

func (m *Store) AddUser(u *models.User) {
	defer m.lock()()
	cp := *u
	m.st.users[u.ID] = &cp
}

func (m *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	defer m.lock()()
	u, ok := m.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer m.lock()()
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Store) TouchUserLogin(_ context.Context, id string) error {
	defer m.lock()()
	u, ok := m.st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.LastSeenAt = &now
	u.LoginCount++
	return nil
}

func (m *Store) TouchUserSeen(_ context.Context, id string) error {
	defer m.lock()()
	u, ok := m.st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastSeenAt = &now
	return nil
}

// Students

func (m *Store) CreateStudent(_ context.Context, s *models.Student) error {
	defer m.lock()()
	cp := *s
	m.st.students[s.ID] = &cp
	return nil
}

func (m *Store) GetStudent(_ context.Context, id string) (*models.Student, error) {
	defer m.lock()()
	s, ok := m.st.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	cp.BlacklistEndDate = copyTime(s.BlacklistEndDate)
	cp.BlacklistReason = copyStr(s.BlacklistReason)
	return &cp, nil
}

func (m *Store) ListStudents(_ context.Context, query string) ([]models.Student, error) {
	defer m.lock()()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Student
	for _, s := range m.st.students {
		if q != "" &&
			!strings.Contains(strings.ToLower(s.FullName), q) &&
			!strings.Contains(strings.ToLower(s.ClassName), q) &&
			!strings.Contains(strings.ToLower(s.House), q) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *Store) SetTrustScore(_ context.Context, studentID string, score int) error {
	defer m.lock()()
	s, ok := m.st.students[studentID]
	if !ok {
		return store.ErrNotFound
	}
	s.TrustScore = score
	return nil
}

func (m *Store) SetRestriction(_ context.Context, studentID string, from, to bool, end *time.Time, reason *string) error {
	defer m.lock()()
	s, ok := m.st.students[studentID]
	if !ok || s.IsBlacklisted != from {
		return store.ErrConflict
	}
	s.IsBlacklisted = to
	s.BlacklistEndDate = copyTime(end)
	s.BlacklistReason = copyStr(reason)
	return nil
}

func (m *Store) ClearLapsedRestriction(_ context.Context, studentID string, now time.Time) error {
	defer m.lock()()
	s, ok := m.st.students[studentID]
	if !ok || !s.IsBlacklisted || s.BlacklistEndDate == nil || s.BlacklistEndDate.After(now) {
		return store.ErrConflict
	}
	s.IsBlacklisted = false
	s.BlacklistEndDate = nil
	s.BlacklistReason = nil
	return nil
}

func (m *Store) ListExpiredRestrictions(_ context.Context, now time.Time) ([]models.Student, error) {
	defer m.lock()()
	var out []models.Student
	for _, s := range m.st.students {
		if s.IsBlacklisted && s.BlacklistEndDate != nil && !s.BlacklistEndDate.After(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// Equipment

func (m *Store) CreateEquipment(_ context.Context, it *models.EquipmentItem) error {
	defer m.lock()()
	cp := *it
	m.st.equipment[it.ID] = &cp
	return nil
}

func (m *Store) GetEquipment(_ context.Context, id string) (*models.EquipmentItem, error) {
	defer m.lock()()
	it, ok := m.st.equipment[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *Store) ListEquipment(_ context.Context, category, status string) ([]models.EquipmentItem, error) {
	defer m.lock()()
	var out []models.EquipmentItem
	for _, it := range m.st.equipment {
		if category != "" && it.Category != category {
			continue
		}
		if status != "" && it.Status != status {
			continue
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, nil
}

func (m *Store) ListEquipmentWithLoan(ctx context.Context, category, status string) ([]store.EquipmentWithLoan, error) {
	items, err := m.ListEquipment(ctx, category, status)
	if err != nil {
		return nil, err
	}
	defer m.lock()()
	out := make([]store.EquipmentWithLoan, len(items))
	for i, it := range items {
		out[i] = store.EquipmentWithLoan{Item: it}
		for _, l := range m.st.loans {
			if l.EquipmentID != it.ID || l.ReturnedAt != nil {
				continue
			}
			cp := *l
			cp.ReturnedAt = copyTime(l.ReturnedAt)
			cp.BorrowedByUserID = copyStr(l.BorrowedByUserID)
			out[i].OpenLoan = &cp
			if s, ok := m.st.students[l.StudentID]; ok {
				sc := *s
				sc.BlacklistEndDate = copyTime(s.BlacklistEndDate)
				sc.BlacklistReason = copyStr(s.BlacklistReason)
				out[i].Borrower = &sc
			}
			break
		}
	}
	return out, nil
}

func (m *Store) SetEquipmentStatus(_ context.Context, id, from, to string) error {
	defer m.lock()()
	it, ok := m.st.equipment[id]
	if !ok || it.Status != from {
		return store.ErrConflict
	}
	it.Status = to
	return nil
}

// Loans

func (m *Store) CreateLoan(_ context.Context, l *models.Loan) error {
	defer m.lock()()
	for _, other := range m.st.loans {
		if other.EquipmentID == l.EquipmentID && other.ReturnedAt == nil {
			return store.ErrConflict
		}
	}
	cp := *l
	cp.ReturnedAt = copyTime(l.ReturnedAt)
	cp.BorrowedByUserID = copyStr(l.BorrowedByUserID)
	m.st.loans[l.ID] = &cp
	return nil
}

func (m *Store) GetLoan(_ context.Context, id string) (*models.Loan, error) {
	defer m.lock()()
	l, ok := m.st.loans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *l
	cp.ReturnedAt = copyTime(l.ReturnedAt)
	cp.BorrowedByUserID = copyStr(l.BorrowedByUserID)
	return &cp, nil
}

func (m *Store) ListLoans(_ context.Context, f store.LoanFilter) ([]models.Loan, error) {
	defer m.lock()()
	var out []models.Loan
	for _, l := range m.st.loans {
		if f.StudentID != "" && l.StudentID != f.StudentID {
			continue
		}
		if f.EquipmentID != "" && l.EquipmentID != f.EquipmentID {
			continue
		}
		if f.Status == "open" && l.ReturnedAt != nil {
			continue
		}
		if f.Status == "returned" && l.ReturnedAt == nil {
			continue
		}
		cp := *l
		cp.ReturnedAt = copyTime(l.ReturnedAt)
		cp.BorrowedByUserID = copyStr(l.BorrowedByUserID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BorrowedAt.Equal(out[j].BorrowedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].BorrowedAt.After(out[j].BorrowedAt)
	})
	return out, nil
}

func (m *Store) CloseLoan(_ context.Context, id string, returnedAt time.Time) error {
	defer m.lock()()
	l, ok := m.st.loans[id]
	if !ok || l.ReturnedAt != nil {
		return store.ErrConflict
	}
	at := returnedAt
	l.ReturnedAt = &at
	l.Status = models.LoanReturned
	return nil
}

func (m *Store) ReopenLoan(_ context.Context, id string) error {
	defer m.lock()()
	l, ok := m.st.loans[id]
	if !ok || l.ReturnedAt == nil {
		return store.ErrConflict
	}
	l.ReturnedAt = nil
	l.Status = models.LoanActive
	return nil
}

func (m *Store) CountLateReturns(_ context.Context, studentID string, since *time.Time) (int, error) {
	defer m.lock()()
	n := 0
	for _, l := range m.st.loans {
		if l.StudentID != studentID || l.ReturnedAt == nil || !l.ReturnedAt.After(l.DueAt) {
			continue
		}
		if since != nil && !l.ReturnedAt.After(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *Store) CountOpenOverdue(_ context.Context, studentID string, now time.Time) (int, error) {
	defer m.lock()()
	n := 0
	for _, l := range m.st.loans {
		if l.StudentID == studentID && l.ReturnedAt == nil && now.After(l.DueAt) {
			n++
		}
	}
	return n, nil
}

func (m *Store) CountLoans(_ context.Context, studentID string) (int, int, error) {
	defer m.lock()()
	open, total := 0, 0
	for _, l := range m.st.loans {
		if l.StudentID != studentID {
			continue
		}
		total++
		if l.ReturnedAt == nil {
			open++
		}
	}
	return open, total, nil
}

// Suspensions

func (m *Store) CreateSuspension(_ context.Context, e *models.SuspensionEntry) error {
	defer m.lock()()
	cp := *e
	m.st.suspensions[e.ID] = &cp
	return nil
}

func (m *Store) CountSuspensions(_ context.Context, studentID string) (int, error) {
	defer m.lock()()
	n := 0
	for _, e := range m.st.suspensions {
		if e.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (m *Store) LastSuspensionEnd(_ context.Context, studentID string) (*time.Time, error) {
	defer m.lock()()
	var last *time.Time
	for _, e := range m.st.suspensions {
		if e.StudentID != studentID {
			continue
		}
		if last == nil || e.EndDate.After(*last) {
			end := e.EndDate
			last = &end
		}
	}
	return last, nil
}

func (m *Store) DeactivateSuspensions(_ context.Context, studentID string) error {
	defer m.lock()()
	for _, e := range m.st.suspensions {
		if e.StudentID == studentID {
			e.IsActive = false
		}
	}
	return nil
}

// Dismissed notifications

func (m *Store) CreateDismissal(_ context.Context, d *models.DismissedNotification) error {
	defer m.lock()()
	for _, have := range m.st.dismissals {
		if have.StudentID == d.StudentID &&
			have.LateReturnsCount == d.LateReturnsCount &&
			have.WarningThreshold == d.WarningThreshold {
			return nil
		}
	}
	cp := *d
	m.st.dismissals[d.ID] = &cp
	return nil
}

func (m *Store) HasDismissal(_ context.Context, studentID string, lateCount, threshold int) (bool, error) {
	defer m.lock()()
	for _, d := range m.st.dismissals {
		if d.StudentID == studentID && d.LateReturnsCount == lateCount && d.WarningThreshold == threshold {
			return true, nil
		}
	}
	return false, nil
}
