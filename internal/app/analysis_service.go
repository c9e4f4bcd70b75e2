// internal/app/analysis_service.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"wellbeing_alert_bot/internal/domain/alert"
	"wellbeing_alert_bot/internal/domain/distress"
)

// Scheduler is the slice of the notification scheduler this service needs.
type Scheduler interface {
	Schedule(ctx context.Context, studentID, studentName, school string, analysis distress.Analysis)
}

// AnalysisService runs the full pipeline for a piece of student text:
// cached classification, durable alert record for anything at or above the
// alerting level, then rule-based notification scheduling. It is a
// best-effort advisory flow: failures along the way are absorbed and
// logged, never returned, so a persistence hiccup cannot break the
// caller's flow.
type AnalysisService struct {
	cache     *distress.Cache
	debouncer *distress.Debouncer
	alertRepo alert.Repository
	scheduler Scheduler
	logger    *logrus.Entry
}

// alertLevel is the minimum risk level that produces a durable alert
// record and notifications.
const alertLevel = distress.RiskHigh

func NewAnalysisService(
	cache *distress.Cache,
	debouncer *distress.Debouncer,
	alertRepo alert.Repository,
	scheduler Scheduler,
	logger *logrus.Entry,
) *AnalysisService {
	return &AnalysisService{
		cache:     cache,
		debouncer: debouncer,
		alertRepo: alertRepo,
		scheduler: scheduler,
		logger:    logger,
	}
}

// ProcessText analyzes one text blob attributed to a student and, when the
// risk level warrants it, records an alert and schedules notifications.
func (s *AnalysisService) ProcessText(ctx context.Context, studentID, studentName, school, text string) distress.Analysis {
	analysis := s.cache.GetOrCompute(text)

	logCtx := s.logger.WithFields(logrus.Fields{
		"student_id": studentID,
		"school":     school,
		"risk_level": analysis.RiskLevel,
	})
	logCtx.Debug("Text analyzed")

	if !analysis.RiskLevel.AtLeast(alertLevel) {
		return analysis
	}

	record := &alert.Alert{
		StudentID:        studentID,
		StudentName:      studentName,
		School:           school,
		RiskLevel:        analysis.RiskLevel,
		DetectedLanguage: analysis.DetectedLanguage,
		Confidence:       analysis.Confidence,
		Indicators:       analysis.Indicators,
	}
	if err := s.alertRepo.RecordAlert(ctx, record); err != nil {
		// Notifications still go out: losing the review record is better
		// than losing the alert.
		logCtx.WithError(err).Error("Failed to record wellbeing alert")
	} else {
		logCtx.WithField("alert_id", record.ID).Info("Wellbeing alert recorded")
	}

	s.scheduler.Schedule(ctx, studentID, studentName, school, analysis)
	return analysis
}

// Analyze runs a bare cached analysis with no alerting side effects, for
// ad hoc checks.
func (s *AnalysisService) Analyze(text string) distress.Analysis {
	return s.cache.GetOrCompute(text)
}

// LiveAnalyze feeds the debouncer: bursts of calls while someone is typing
// collapse to one analysis of the latest text. Superseded calls yield nil.
func (s *AnalysisService) LiveAnalyze(text string) <-chan *distress.Analysis {
	return s.debouncer.Analyze(text)
}

// ProcessBatch analyzes a bulk of texts in bounded chunks, without
// alerting side effects. Texts below the minimum length are omitted from
// the result.
func (s *AnalysisService) ProcessBatch(ctx context.Context, texts []string) []distress.Analysis {
	return s.debouncer.BatchAnalyze(ctx, texts)
}
