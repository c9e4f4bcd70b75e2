// internal/infra/database/inmemory.go
package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"wellbeing_alert_bot/internal/domain/alert"
	"wellbeing_alert_bot/internal/domain/roster"
)

// InMemoryRosterRepository is a mutex-guarded map implementation of
// roster.Repository, used by tests and the development profile.
type InMemoryRosterRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]roster.Recipient
}

var _ roster.Repository = (*InMemoryRosterRepository)(nil)

func NewInMemoryRosterRepository() *InMemoryRosterRepository {
	return &InMemoryRosterRepository{nextID: 1, byID: make(map[int64]roster.Recipient)}
}

func (r *InMemoryRosterRepository) Create(_ context.Context, rcpt *roster.Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rcpt.TelegramID.Valid {
		for _, existing := range r.byID {
			if existing.TelegramID.Valid && existing.TelegramID.Int64 == rcpt.TelegramID.Int64 {
				return ErrDuplicateTelegramID
			}
		}
	}
	now := time.Now()
	rcpt.ID = r.nextID
	r.nextID++
	rcpt.CreatedAt = now
	rcpt.UpdatedAt = now
	r.byID[rcpt.ID] = *rcpt
	return nil
}

func (r *InMemoryRosterRepository) GetByTelegramID(_ context.Context, telegramID int64) (*roster.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rcpt := range r.byID {
		if rcpt.TelegramID.Valid && rcpt.TelegramID.Int64 == telegramID {
			cp := rcpt
			return &cp, nil
		}
	}
	return nil, ErrRecipientNotFound
}

func (r *InMemoryRosterRepository) Update(_ context.Context, rcpt *roster.Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rcpt.ID]; !ok {
		return ErrRecipientNotFound
	}
	rcpt.UpdatedAt = time.Now()
	r.byID[rcpt.ID] = *rcpt
	return nil
}

func (r *InMemoryRosterRepository) list(match func(roster.Recipient) bool) []*roster.Recipient {
	out := make([]*roster.Recipient, 0)
	for id := int64(1); id < r.nextID; id++ {
		rcpt, ok := r.byID[id]
		if !ok || !match(rcpt) {
			continue
		}
		cp := rcpt
		out = append(out, &cp)
	}
	return out
}

func (r *InMemoryRosterRepository) ListBySchoolAndRole(_ context.Context, school string, role roster.Role) ([]*roster.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(rcpt roster.Recipient) bool {
		return rcpt.IsActive && rcpt.School == school && rcpt.Role == role
	}), nil
}

func (r *InMemoryRosterRepository) ListParentsOfStudent(_ context.Context, studentID string) ([]*roster.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(rcpt roster.Recipient) bool {
		return rcpt.IsActive && rcpt.Role == roster.RoleParent &&
			rcpt.StudentID.Valid && rcpt.StudentID.String == studentID
	}), nil
}

func (r *InMemoryRosterRepository) ListBySchool(_ context.Context, school string) ([]*roster.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(rcpt roster.Recipient) bool { return rcpt.School == school }), nil
}

func (r *InMemoryRosterRepository) ListAll(_ context.Context) ([]*roster.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(roster.Recipient) bool { return true }), nil
}

// InMemoryAlertRepository is the in-memory counterpart of the alert store.
type InMemoryAlertRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]alert.Alert
	order []uuid.UUID
}

var _ alert.Repository = (*InMemoryAlertRepository)(nil)

func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{byID: make(map[uuid.UUID]alert.Alert)}
}

func (r *InMemoryAlertRepository) RecordAlert(_ context.Context, a *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.byID[a.ID] = *a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *InMemoryAlertRepository) GetByID(_ context.Context, id uuid.UUID) (*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	cp := a
	return &cp, nil
}

func (r *InMemoryAlertRepository) ListUnreviewed(_ context.Context, school string) ([]*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*alert.Alert, 0)
	// newest first, matching the Postgres ordering
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.byID[r.order[i]]
		if a.School == school && !a.IsReviewed {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *InMemoryAlertRepository) MarkReviewed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return ErrAlertNotFound
	}
	a.IsReviewed = true
	a.ReviewedAt.Time = time.Now()
	a.ReviewedAt.Valid = true
	r.byID[id] = a
	return nil
}
