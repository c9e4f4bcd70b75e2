// internal/infra/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"wellbeing_alert_bot/internal/domain/alert"
	"wellbeing_alert_bot/internal/domain/delivery"
	"wellbeing_alert_bot/internal/domain/distress"
	"wellbeing_alert_bot/internal/domain/roster"
)

// NotificationScheduler owns the set of pending, time-delayed notification
// tasks. For every rule matching an analysis it creates one independent
// pending entry: zero-delay rules execute synchronously, delayed rules get
// their own timer. Delivery is at-most-once: a failed attempt is logged and
// the entry is removed anyway. Nothing here throws across its boundary;
// the only observable failure surface is the log and the feedback sink.
type NotificationScheduler struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*alert.Pending
	timers  map[uuid.UUID]*time.Timer

	rules      *alert.RuleSet
	rosterRepo roster.Repository
	channels   []delivery.Channel
	feedback   delivery.Feedback
	cache      *distress.Cache
	logger     *logrus.Entry

	cronEngine       *cron.Cron
	cronSpecDispatch string
	cronSpecCache    string

	// test seams; production values are time.Now and time.Minute
	now       func() time.Time
	delayUnit time.Duration
}

func NewNotificationScheduler(
	rules *alert.RuleSet,
	rosterRepo roster.Repository,
	channels []delivery.Channel,
	feedback delivery.Feedback,
	cache *distress.Cache,
	logger *logrus.Entry,
	cronSpecDispatch string, // e.g. "* * * * *" (every minute, catches lost timers)
	cronSpecCache string, // e.g. "*/5 * * * *" (matches the cache TTL)
) *NotificationScheduler {
	return &NotificationScheduler{
		pending:          make(map[uuid.UUID]*alert.Pending),
		timers:           make(map[uuid.UUID]*time.Timer),
		rules:            rules,
		rosterRepo:       rosterRepo,
		channels:         channels,
		feedback:         feedback,
		cache:            cache,
		logger:           logger,
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		cronSpecDispatch: cronSpecDispatch,
		cronSpecCache:    cronSpecCache,
		now:              time.Now,
		delayUnit:        time.Minute,
	}
}

// Schedule creates one pending notification per active rule matching the
// analysis risk level. A rule with zero delay is executed before Schedule
// returns; anything else fires after its configured delay. Invalid rules
// are skipped, the remaining rules still apply.
func (s *NotificationScheduler) Schedule(ctx context.Context, studentID, studentName, school string, analysis distress.Analysis) {
	matched := s.rules.Select(analysis.RiskLevel)
	if len(matched) == 0 {
		s.logger.WithFields(logrus.Fields{
			"student_id": studentID,
			"risk_level": analysis.RiskLevel,
		}).Debug("No notification rules apply")
		return
	}

	for _, rule := range matched {
		if err := rule.Validate(); err != nil {
			s.logger.WithError(err).Warn("Skipping invalid notification rule")
			continue
		}

		now := s.now()
		p := &alert.Pending{
			ID:           uuid.New(),
			StudentID:    studentID,
			StudentName:  studentName,
			School:       school,
			Analysis:     analysis,
			Rule:         rule, // policy copied at creation time, later rule edits don't reach it
			State:        alert.PendingStateScheduled,
			ScheduledFor: now.Add(time.Duration(rule.DelayMinutes) * s.delayUnit),
			CreatedAt:    now,
			Sent:         make(map[string]bool),
		}

		s.mu.Lock()
		s.pending[p.ID] = p
		s.mu.Unlock()

		s.logger.WithFields(logrus.Fields{
			"notification_id": p.ID,
			"rule_id":         rule.ID,
			"student_id":      studentID,
			"risk_level":      analysis.RiskLevel,
			"delay_minutes":   rule.DelayMinutes,
		}).Info("Notification scheduled")

		if rule.DelayMinutes == 0 {
			s.execute(ctx, p.ID)
			continue
		}

		id := p.ID
		timer := time.AfterFunc(time.Duration(rule.DelayMinutes)*s.delayUnit, func() {
			execCtx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			s.execute(execCtx, id)
		})
		s.mu.Lock()
		s.timers[p.ID] = timer
		s.mu.Unlock()
	}
}

// Cancel removes a pending entry before it executes. It is best-effort: a
// no-op once execution has started, and cancelling one entry never affects
// siblings scheduled from the same analysis.
func (s *NotificationScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok || p.State != alert.PendingStateScheduled {
		return false
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	delete(s.pending, id)
	s.logger.WithField("notification_id", id).Info("Pending notification cancelled")
	return true
}

// Snapshot lists pending notifications as copies, oldest first. Readers
// never observe live entries the scheduler might be mutating.
func (s *NotificationScheduler) Snapshot() []alert.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alert.Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.Copy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// execute resolves recipients per the entry's rule flags, attempts delivery
// through every configured channel, and unconditionally removes the entry
// afterward. One recipient's failure never blocks the others.
func (s *NotificationScheduler) execute(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok || p.State != alert.PendingStateScheduled {
		s.mu.Unlock()
		return // already executing, completed or cancelled
	}
	p.State = alert.PendingStateExecuting
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		delete(s.timers, id)
		s.mu.Unlock()
	}()

	execLogger := s.logger.WithFields(logrus.Fields{
		"notification_id": id,
		"rule_id":         p.Rule.ID,
		"student_id":      p.StudentID,
		"school":          p.School,
	})
	execLogger.Info("Executing notification")

	recipients := s.resolveRecipients(ctx, p, execLogger)
	if len(recipients) == 0 {
		execLogger.Warn("No recipients resolved; notification dropped")
		s.feedback.Failure(fmt.Sprintf("No recipients found for %s alert at %s", p.Analysis.RiskLevel, p.School))
		return
	}

	subject, body := buildMessage(p)
	delivered := 0
	for _, rcpt := range recipients {
		for _, ch := range s.channels {
			err := ch.Send(ctx, *rcpt, subject, body)
			switch {
			case err == nil:
				delivered++
				s.mu.Lock()
				p.Sent[ch.ID()] = true
				s.mu.Unlock()
			case errors.Is(err, delivery.ErrNoAddress):
				// recipient simply unreachable on this channel
				execLogger.WithFields(logrus.Fields{
					"recipient": rcpt.Name,
					"channel":   ch.ID(),
				}).Debug("Recipient has no address for channel")
			default:
				execLogger.WithError(err).WithFields(logrus.Fields{
					"recipient": rcpt.Name,
					"channel":   ch.ID(),
				}).Error("Delivery failed")
				s.feedback.Failure(fmt.Sprintf("Failed to notify %s about %s", rcpt.Name, p.StudentName))
			}
		}
	}

	execLogger.WithField("delivered", delivered).Info("Notification executed")
	if delivered > 0 {
		s.feedback.Success(fmt.Sprintf("Notified %d recipient(s) about %s (%s)", delivered, p.StudentName, p.Analysis.RiskLevel))
	}
}

// resolveRecipients looks up teachers/admins of the school and parents of
// the student, filtered by the rule's flags. A lookup failure for one group
// is logged and the other groups are still notified.
func (s *NotificationScheduler) resolveRecipients(ctx context.Context, p *alert.Pending, execLogger *logrus.Entry) []*roster.Recipient {
	var recipients []*roster.Recipient

	if p.Rule.NotifyTeachers {
		teachers, err := s.rosterRepo.ListBySchoolAndRole(ctx, p.School, roster.RoleTeacher)
		if err != nil {
			execLogger.WithError(err).Error("Failed to list teachers")
		} else {
			recipients = append(recipients, teachers...)
		}
	}
	if p.Rule.NotifyAdmins {
		admins, err := s.rosterRepo.ListBySchoolAndRole(ctx, p.School, roster.RoleAdmin)
		if err != nil {
			execLogger.WithError(err).Error("Failed to list admins")
		} else {
			recipients = append(recipients, admins...)
		}
	}
	if p.Rule.NotifyParents {
		parents, err := s.rosterRepo.ListParentsOfStudent(ctx, p.StudentID)
		if err != nil {
			execLogger.WithError(err).Error("Failed to list parents")
		} else {
			recipients = append(recipients, parents...)
		}
	}
	return recipients
}

func buildMessage(p *alert.Pending) (subject, body string) {
	subject = fmt.Sprintf("%s wellbeing alert: %s", p.Analysis.RiskLevel, p.StudentName)

	var b strings.Builder
	fmt.Fprintf(&b, "A wellbeing concern was detected for %s (%s).\n\n", p.StudentName, p.School)
	fmt.Fprintf(&b, "Risk level: %s\n", p.Analysis.RiskLevel)
	fmt.Fprintf(&b, "Detected language: %s\n", p.Analysis.DetectedLanguage)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", p.Analysis.Confidence*100)
	if len(p.Analysis.Indicators) > 0 {
		fmt.Fprintf(&b, "Indicators: %s\n", strings.Join(p.Analysis.Indicators, ", "))
	}
	fmt.Fprintf(&b, "\nDetected at: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("Please check in with the student as soon as possible.")
	return subject, b.String()
}

// Start registers the sweep jobs and starts the cron engine: one sweep
// dispatches overdue entries whose timer was lost, the other purges
// expired analysis cache entries.
func (s *NotificationScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecDispatch, func() {
		s.dispatchOverdue()
	})
	if err != nil {
		return fmt.Errorf("could not add dispatch sweep cron job: %w", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecCache, func() {
		if s.cache == nil {
			return
		}
		if dropped := s.cache.Purge(); dropped > 0 {
			s.logger.WithField("dropped", dropped).Debug("Purged expired analysis cache entries")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add cache sweep cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Notification scheduler started with sweep jobs")
	return nil
}

// dispatchOverdue executes entries whose fire time has passed but whose
// timer never fired. The state check in execute makes a race with a live
// timer harmless.
func (s *NotificationScheduler) dispatchOverdue() {
	now := s.now()
	s.mu.Lock()
	var due []uuid.UUID
	for id, p := range s.pending {
		if p.State == alert.PendingStateScheduled && !p.ScheduledFor.After(now) {
			due = append(due, id)
		}
	}
	s.mu.Unlock()

	for _, id := range due {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		s.execute(ctx, id)
		cancel()
	}
}

// Stop halts the cron engine, waits for running jobs, and stops every
// outstanding timer. Pending entries are dropped, not executed: at-most-once
// delivery means shutdown loses whatever had not fired yet.
func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done() // Wait for graceful shutdown

	s.mu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.logger.Info("Notification scheduler gracefully stopped")
}
