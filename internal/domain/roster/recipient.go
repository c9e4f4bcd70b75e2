// internal/domain/roster/recipient.go
package roster

import (
	"database/sql"
	"time"
)

// Role determines which rule flags select a recipient.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
	RoleParent  Role = "PARENT"
)

// Recipient is someone alerts can be delivered to: a teacher or admin of a
// school, or a parent linked to a specific student. Email and Telegram
// chat are both optional; each delivery channel uses whichever address it
// understands and reports the recipient unreachable otherwise.
type Recipient struct {
	ID         int64
	Name       string
	Email      sql.NullString
	TelegramID sql.NullInt64
	Role       Role
	School     string
	StudentID  sql.NullString // set for parents: the student they belong to
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
