// internal/app/roster_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"

	"wellbeing_alert_bot/internal/domain/roster"
	idb "wellbeing_alert_bot/internal/infra/database"
)

// Custom application-level errors for the roster service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrRecipientAlreadyExists = fmt.Errorf("recipient with this Telegram ID already exists")
var ErrRecipientAlreadyInactive = fmt.Errorf("recipient is already inactive")
var ErrInvalidRole = fmt.Errorf("role must be TEACHER, ADMIN or PARENT")

// RosterService handles recipient management. All operations are gated on
// the configured admin Telegram ID.
type RosterService struct {
	rosterRepo      roster.Repository
	adminTelegramID int64
}

func NewRosterService(rr roster.Repository, adminID int64) *RosterService {
	return &RosterService{
		rosterRepo:      rr,
		adminTelegramID: adminID,
	}
}

// AddRecipient handles the business logic for adding a new recipient.
// The email and studentID values are optional; studentID only makes sense
// for parents.
func (s *RosterService) AddRecipient(
	ctx context.Context,
	performingAdminID int64,
	telegramID int64,
	name string,
	role roster.Role,
	school string,
	email string,
	studentID string,
) (*roster.Recipient, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	switch role {
	case roster.RoleTeacher, roster.RoleAdmin, roster.RoleParent:
	default:
		return nil, ErrInvalidRole
	}

	// Check if recipient already exists by Telegram ID
	_, err := s.rosterRepo.GetByTelegramID(ctx, telegramID)
	if err == nil { // Recipient found, so already exists
		return nil, ErrRecipientAlreadyExists
	}
	if err != idb.ErrRecipientNotFound { // Another error occurred during lookup
		return nil, fmt.Errorf("failed to check existing recipient: %w", err)
	}

	newRecipient := &roster.Recipient{
		Name:       name,
		TelegramID: sql.NullInt64{Int64: telegramID, Valid: true},
		Role:       role,
		School:     school,
		IsActive:   true, // New recipients are active by default
	}
	if email != "" {
		newRecipient.Email = sql.NullString{String: email, Valid: true}
	}
	if studentID != "" {
		newRecipient.StudentID = sql.NullString{String: studentID, Valid: true}
	}

	if err := s.rosterRepo.Create(ctx, newRecipient); err != nil {
		if err == idb.ErrDuplicateTelegramID {
			return nil, ErrRecipientAlreadyExists
		}
		return nil, fmt.Errorf("failed to create recipient in repository: %w", err)
	}

	return newRecipient, nil
}

// RemoveRecipient deactivates a recipient; their history is kept.
func (s *RosterService) RemoveRecipient(ctx context.Context, performingAdminID int64, telegramID int64) (*roster.Recipient, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.rosterRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if err == idb.ErrRecipientNotFound {
			return nil, idb.ErrRecipientNotFound // Propagate specific error
		}
		return nil, fmt.Errorf("failed to get recipient by Telegram ID for removal: %w", err)
	}

	if !target.IsActive {
		return target, ErrRecipientAlreadyInactive
	}

	target.IsActive = false
	if err := s.rosterRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update recipient to inactive in repository: %w", err)
	}

	return target, nil
}

// ListRecipients returns the recipients of one school, or all recipients
// when school is empty.
func (s *RosterService) ListRecipients(ctx context.Context, performingAdminID int64, school string) ([]*roster.Recipient, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if school == "" {
		return s.rosterRepo.ListAll(ctx)
	}
	return s.rosterRepo.ListBySchool(ctx, school)
}
