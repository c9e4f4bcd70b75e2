// internal/domain/roster/repository.go
package roster

import (
	"context"
)

// Repository defines the operations for persisting and retrieving
// recipients. ListBySchoolAndRole and ListParentsOfStudent are the lookup
// face the notification scheduler depends on; the rest serve roster
// administration.
type Repository interface {
	Create(ctx context.Context, r *Recipient) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*Recipient, error)
	Update(ctx context.Context, r *Recipient) error
	ListBySchoolAndRole(ctx context.Context, school string, role Role) ([]*Recipient, error)
	ListParentsOfStudent(ctx context.Context, studentID string) ([]*Recipient, error)
	ListBySchool(ctx context.Context, school string) ([]*Recipient, error)
	ListAll(ctx context.Context) ([]*Recipient, error)
}
