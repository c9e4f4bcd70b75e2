package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing_alert_bot/internal/domain/distress"
	idb "wellbeing_alert_bot/internal/infra/database"
)

// fakeScheduler records every scheduling request.
type fakeScheduler struct {
	calls []scheduleCall
}

type scheduleCall struct {
	studentID string
	school    string
	level     distress.RiskLevel
}

func (f *fakeScheduler) Schedule(_ context.Context, studentID, _, school string, analysis distress.Analysis) {
	f.calls = append(f.calls, scheduleCall{studentID: studentID, school: school, level: analysis.RiskLevel})
}

func newTestAnalysisService(t *testing.T) (*AnalysisService, *idb.InMemoryAlertRepository, *fakeScheduler, *distress.Debouncer) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	entry := logrus.NewEntry(l)

	classifier := distress.NewClassifier(distress.DefaultLexicon(), entry)
	cache := distress.NewCache(classifier, distress.DefaultCacheTTL)
	debouncer := distress.NewDebouncer(cache, 20*time.Millisecond)
	alertRepo := idb.NewInMemoryAlertRepository()
	sched := &fakeScheduler{}

	return NewAnalysisService(cache, debouncer, alertRepo, sched, entry), alertRepo, sched, debouncer
}

func TestProcessTextCriticalRecordsAlertAndSchedules(t *testing.T) {
	svc, alertRepo, sched, _ := newTestAnalysisService(t)

	got := svc.ProcessText(context.Background(), "stu-1", "Jamie Park", "Lincoln High",
		"I want to kill myself and end everything")

	assert.Equal(t, distress.RiskCritical, got.RiskLevel)

	require.Len(t, sched.calls, 1)
	assert.Equal(t, "stu-1", sched.calls[0].studentID)
	assert.Equal(t, "Lincoln High", sched.calls[0].school)
	assert.Equal(t, distress.RiskCritical, sched.calls[0].level)

	alerts, err := alertRepo.ListUnreviewed(context.Background(), "Lincoln High")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Jamie Park", alerts[0].StudentName)
	assert.Equal(t, distress.RiskCritical, alerts[0].RiskLevel)
	assert.NotEmpty(t, alerts[0].Indicators)
}

func TestProcessTextBelowAlertLevelHasNoSideEffects(t *testing.T) {
	svc, alertRepo, sched, _ := newTestAnalysisService(t)

	got := svc.ProcessText(context.Background(), "stu-1", "Jamie Park", "Lincoln High",
		"Today was a great day at school!")

	assert.Equal(t, distress.RiskLow, got.RiskLevel)
	assert.Empty(t, sched.calls)

	alerts, err := alertRepo.ListUnreviewed(context.Background(), "Lincoln High")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestProcessTextHighAlsoAlerts(t *testing.T) {
	svc, alertRepo, sched, _ := newTestAnalysisService(t)

	got := svc.ProcessText(context.Background(), "stu-2", "Robin Lee", "Lincoln High",
		"I feel so hopeless and worthless lately")

	assert.Equal(t, distress.RiskHigh, got.RiskLevel)
	assert.Len(t, sched.calls, 1)

	alerts, err := alertRepo.ListUnreviewed(context.Background(), "Lincoln High")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestAnalyzeHasNoSideEffects(t *testing.T) {
	svc, alertRepo, sched, _ := newTestAnalysisService(t)

	got := svc.Analyze("I want to kill myself and end everything")

	assert.Equal(t, distress.RiskCritical, got.RiskLevel)
	assert.Empty(t, sched.calls)
	alerts, err := alertRepo.ListUnreviewed(context.Background(), "Lincoln High")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestLiveAnalyzeCollapsesBurst(t *testing.T) {
	svc, _, _, debouncer := newTestAnalysisService(t)
	defer debouncer.Stop()

	first := svc.LiveAnalyze("I feel so hopeless")
	second := svc.LiveAnalyze("I feel so hopeless and worthless lately")

	assert.Nil(t, <-first, "superseded call yields nil")
	got := <-second
	require.NotNil(t, got)
	assert.Equal(t, distress.RiskHigh, got.RiskLevel)
}

func TestProcessBatchSkipsShortTexts(t *testing.T) {
	svc, _, sched, _ := newTestAnalysisService(t)

	results := svc.ProcessBatch(context.Background(), []string{
		"hi",
		"Today was a great day at school!",
		"I want to kill myself and end everything",
	})

	require.Len(t, results, 2)
	assert.Equal(t, distress.RiskLow, results[0].RiskLevel)
	assert.Equal(t, distress.RiskCritical, results[1].RiskLevel)
	assert.Empty(t, sched.calls, "batch analysis never schedules notifications")
}
