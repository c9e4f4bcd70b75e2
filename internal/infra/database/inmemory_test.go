package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing_alert_bot/internal/domain/alert"
	"wellbeing_alert_bot/internal/domain/distress"
	"wellbeing_alert_bot/internal/domain/roster"
)

func TestInMemoryRosterRepositoryCreateAssignsIDs(t *testing.T) {
	repo := NewInMemoryRosterRepository()
	ctx := context.Background()

	first := roster.Recipient{Name: "Ms. Quinn", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: true}
	second := roster.Recipient{Name: "Mr. Holt", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: true}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestInMemoryRosterRepositoryRejectsDuplicateTelegramID(t *testing.T) {
	repo := NewInMemoryRosterRepository()
	ctx := context.Background()

	first := roster.Recipient{
		Name: "Ms. Quinn", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: true,
		TelegramID: sql.NullInt64{Int64: 101, Valid: true},
	}
	require.NoError(t, repo.Create(ctx, &first))

	dup := roster.Recipient{
		Name: "Impostor", Role: roster.RoleAdmin, School: "Other School", IsActive: true,
		TelegramID: sql.NullInt64{Int64: 101, Valid: true},
	}
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateTelegramID)
}

func TestInMemoryRosterRepositoryLookups(t *testing.T) {
	repo := NewInMemoryRosterRepository()
	ctx := context.Background()

	seed := []roster.Recipient{
		{Name: "Ms. Quinn", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: true,
			TelegramID: sql.NullInt64{Int64: 101, Valid: true}},
		{Name: "Principal Reyes", Role: roster.RoleAdmin, School: "Lincoln High", IsActive: true},
		{Name: "Dana Park", Role: roster.RoleParent, School: "Lincoln High", IsActive: true,
			StudentID: sql.NullString{String: "stu-1", Valid: true}},
		{Name: "Mr. Gone", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: false},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	got, err := repo.GetByTelegramID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Ms. Quinn", got.Name)

	_, err = repo.GetByTelegramID(ctx, 404)
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	teachers, err := repo.ListBySchoolAndRole(ctx, "Lincoln High", roster.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, teachers, 1, "inactive teachers are not notification targets")
	assert.Equal(t, "Ms. Quinn", teachers[0].Name)

	parents, err := repo.ListParentsOfStudent(ctx, "stu-1")
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "Dana Park", parents[0].Name)

	school, err := repo.ListBySchool(ctx, "Lincoln High")
	require.NoError(t, err)
	assert.Len(t, school, 4, "school listing includes inactive recipients")
}

func TestInMemoryRosterRepositoryUpdate(t *testing.T) {
	repo := NewInMemoryRosterRepository()
	ctx := context.Background()

	rcpt := roster.Recipient{Name: "Ms. Quinn", Role: roster.RoleTeacher, School: "Lincoln High", IsActive: true}
	require.NoError(t, repo.Create(ctx, &rcpt))

	rcpt.IsActive = false
	require.NoError(t, repo.Update(ctx, &rcpt))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	ghost := roster.Recipient{ID: 404, Name: "Nobody"}
	assert.ErrorIs(t, repo.Update(ctx, &ghost), ErrRecipientNotFound)
}

func TestInMemoryAlertRepositoryRoundTrip(t *testing.T) {
	repo := NewInMemoryAlertRepository()
	ctx := context.Background()

	a := &alert.Alert{
		StudentID:        "stu-1",
		StudentName:      "Jamie Park",
		School:           "Lincoln High",
		RiskLevel:        distress.RiskCritical,
		DetectedLanguage: distress.LanguageEnglish,
		Confidence:       1,
		Indicators:       []string{"kill myself"},
	}
	require.NoError(t, repo.RecordAlert(ctx, a))
	assert.NotEqual(t, uuid.Nil, a.ID, "RecordAlert assigns an ID")
	assert.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie Park", got.StudentName)
	assert.False(t, got.IsReviewed)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestInMemoryAlertRepositoryReviewFlow(t *testing.T) {
	repo := NewInMemoryAlertRepository()
	ctx := context.Background()

	first := &alert.Alert{StudentID: "stu-1", StudentName: "Jamie Park", School: "Lincoln High", RiskLevel: distress.RiskHigh}
	second := &alert.Alert{StudentID: "stu-2", StudentName: "Robin Lee", School: "Lincoln High", RiskLevel: distress.RiskCritical}
	require.NoError(t, repo.RecordAlert(ctx, first))
	require.NoError(t, repo.RecordAlert(ctx, second))

	unreviewed, err := repo.ListUnreviewed(ctx, "Lincoln High")
	require.NoError(t, err)
	require.Len(t, unreviewed, 2)
	assert.Equal(t, "Robin Lee", unreviewed[0].StudentName, "newest first")

	require.NoError(t, repo.MarkReviewed(ctx, first.ID))

	unreviewed, err = repo.ListUnreviewed(ctx, "Lincoln High")
	require.NoError(t, err)
	require.Len(t, unreviewed, 1)
	assert.Equal(t, "Robin Lee", unreviewed[0].StudentName)

	reviewed, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, reviewed.IsReviewed)
	assert.True(t, reviewed.ReviewedAt.Valid)

	assert.ErrorIs(t, repo.MarkReviewed(ctx, uuid.New()), ErrAlertNotFound)
}
