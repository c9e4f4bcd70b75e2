// internal/infra/database/postgres_roster_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wellbeing_alert_bot/internal/domain/roster"
)

// Custom errors specific to the roster repository
var ErrRecipientNotFound = fmt.Errorf("recipient not found")
var ErrDuplicateTelegramID = fmt.Errorf("recipient with this Telegram ID already exists")

type PostgresRosterRepository struct {
	db *sql.DB
}

var _ roster.Repository = (*PostgresRosterRepository)(nil)

func NewPostgresRosterRepository(db *sql.DB) *PostgresRosterRepository {
	return &PostgresRosterRepository{db: db}
}

func (r *PostgresRosterRepository) Create(ctx context.Context, rcpt *roster.Recipient) error {
	query := `INSERT INTO recipients (name, email, telegram_id, role, school, student_id, is_active)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rcpt.Name, rcpt.Email, rcpt.TelegramID, rcpt.Role, rcpt.School, rcpt.StudentID, rcpt.IsActive,
	).Scan(&rcpt.ID, &rcpt.CreatedAt, &rcpt.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "recipients_telegram_id_unique") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating recipient: %w", err)
	}
	return nil
}

func (r *PostgresRosterRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*roster.Recipient, error) {
	query := `SELECT id, name, email, telegram_id, role, school, student_id, is_active, created_at, updated_at
               FROM recipients WHERE telegram_id = $1`
	rcpt := roster.Recipient{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(
		&rcpt.ID, &rcpt.Name, &rcpt.Email, &rcpt.TelegramID, &rcpt.Role,
		&rcpt.School, &rcpt.StudentID, &rcpt.IsActive, &rcpt.CreatedAt, &rcpt.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("error getting recipient by Telegram ID: %w", err)
	}
	return &rcpt, nil
}

func (r *PostgresRosterRepository) Update(ctx context.Context, rcpt *roster.Recipient) error {
	query := `UPDATE recipients
               SET name = $1, email = $2, telegram_id = $3, role = $4, school = $5, student_id = $6, is_active = $7, updated_at = NOW()
               WHERE id = $8
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rcpt.Name, rcpt.Email, rcpt.TelegramID, rcpt.Role, rcpt.School, rcpt.StudentID, rcpt.IsActive, rcpt.ID,
	).Scan(&rcpt.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("error updating recipient: %w", err)
	}
	return nil
}

// Helper to scan multiple rows
func scanRecipients(rows *sql.Rows) ([]*roster.Recipient, error) {
	recipients := make([]*roster.Recipient, 0)
	for rows.Next() {
		rcpt := roster.Recipient{}
		if err := rows.Scan(
			&rcpt.ID, &rcpt.Name, &rcpt.Email, &rcpt.TelegramID, &rcpt.Role,
			&rcpt.School, &rcpt.StudentID, &rcpt.IsActive, &rcpt.CreatedAt, &rcpt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning recipient row: %w", err)
		}
		recipients = append(recipients, &rcpt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient rows: %w", err)
	}
	return recipients, nil
}

func (r *PostgresRosterRepository) ListBySchoolAndRole(ctx context.Context, school string, role roster.Role) ([]*roster.Recipient, error) {
	query := `SELECT id, name, email, telegram_id, role, school, student_id, is_active, created_at, updated_at
               FROM recipients
               WHERE school = $1 AND role = $2 AND is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, school, role)
	if err != nil {
		return nil, fmt.Errorf("error querying recipients by school and role: %w", err)
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *PostgresRosterRepository) ListParentsOfStudent(ctx context.Context, studentID string) ([]*roster.Recipient, error) {
	query := `SELECT id, name, email, telegram_id, role, school, student_id, is_active, created_at, updated_at
               FROM recipients
               WHERE role = $1 AND student_id = $2 AND is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, roster.RoleParent, studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying parents of student: %w", err)
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *PostgresRosterRepository) ListBySchool(ctx context.Context, school string) ([]*roster.Recipient, error) {
	query := `SELECT id, name, email, telegram_id, role, school, student_id, is_active, created_at, updated_at
               FROM recipients
               WHERE school = $1 ORDER BY role, id`
	rows, err := r.db.QueryContext(ctx, query, school)
	if err != nil {
		return nil, fmt.Errorf("error querying recipients by school: %w", err)
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *PostgresRosterRepository) ListAll(ctx context.Context) ([]*roster.Recipient, error) {
	query := `SELECT id, name, email, telegram_id, role, school, student_id, is_active, created_at, updated_at
               FROM recipients ORDER BY school, role, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying all recipients: %w", err)
	}
	defer rows.Close()
	return scanRecipients(rows)
}
