// internal/infra/database/postgres_alert_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Array and driver registration

	"wellbeing_alert_bot/internal/domain/alert"
)

// Custom errors specific to the alert repository
var ErrAlertNotFound = fmt.Errorf("wellbeing alert not found")

type PostgresAlertRepository struct {
	db *sql.DB
}

var _ alert.Repository = (*PostgresAlertRepository)(nil)

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

func (r *PostgresAlertRepository) RecordAlert(ctx context.Context, a *alert.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	query := `INSERT INTO wellbeing_alerts (id, student_id, student_name, school, risk_level, detected_language, confidence, indicators, is_reviewed, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.StudentID, a.StudentName, a.School, a.RiskLevel, a.DetectedLanguage,
		a.Confidence, pq.Array(a.Indicators), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error recording wellbeing alert: %w", err)
	}
	return nil
}

func (r *PostgresAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	query := `SELECT id, student_id, student_name, school, risk_level, detected_language, confidence, indicators, is_reviewed, reviewed_at, created_at
               FROM wellbeing_alerts WHERE id = $1`
	a := alert.Alert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.StudentID, &a.StudentName, &a.School, &a.RiskLevel, &a.DetectedLanguage,
		&a.Confidence, pq.Array(&a.Indicators), &a.IsReviewed, &a.ReviewedAt, &a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("error getting wellbeing alert by ID: %w", err)
	}
	return &a, nil
}

func (r *PostgresAlertRepository) ListUnreviewed(ctx context.Context, school string) ([]*alert.Alert, error) {
	query := `SELECT id, student_id, student_name, school, risk_level, detected_language, confidence, indicators, is_reviewed, reviewed_at, created_at
               FROM wellbeing_alerts
               WHERE school = $1 AND is_reviewed = FALSE ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, school)
	if err != nil {
		return nil, fmt.Errorf("error querying unreviewed alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*alert.Alert, 0)
	for rows.Next() {
		a := alert.Alert{}
		if err := rows.Scan(
			&a.ID, &a.StudentID, &a.StudentName, &a.School, &a.RiskLevel, &a.DetectedLanguage,
			&a.Confidence, pq.Array(&a.Indicators), &a.IsReviewed, &a.ReviewedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning alert row: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}

func (r *PostgresAlertRepository) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE wellbeing_alerts SET is_reviewed = TRUE, reviewed_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error marking alert reviewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}
