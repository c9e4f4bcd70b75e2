// internal/domain/alert/alert.go
package alert

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"wellbeing_alert_bot/internal/domain/distress"
)

// Alert is the durable record written whenever an analysis crosses the
// alerting threshold, so a human reviewer can later mark it reviewed.
// Corresponds to the 'wellbeing_alerts' table.
type Alert struct {
	ID               uuid.UUID
	StudentID        string
	StudentName      string
	School           string
	RiskLevel        distress.RiskLevel
	DetectedLanguage distress.Language
	Confidence       float64
	Indicators       []string
	IsReviewed       bool
	ReviewedAt       sql.NullTime
	CreatedAt        time.Time
}

// Repository defines persistence operations for alert records.
type Repository interface {
	RecordAlert(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListUnreviewed(ctx context.Context, school string) ([]*Alert, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}
