// internal/domain/alert/pending.go
package alert

import (
	"time"

	"github.com/google/uuid"

	"wellbeing_alert_bot/internal/domain/distress"
)

// PendingState is the lifecycle of a scheduled notification.
type PendingState string

const (
	// PendingStateScheduled means the entry is waiting for its fire time.
	PendingStateScheduled PendingState = "SCHEDULED"
	// PendingStateExecuting means delivery has started; cancellation no
	// longer has any effect.
	PendingStateExecuting PendingState = "EXECUTING"
)

// Pending is one time-delayed notification task. The scheduler is its sole
// owner: no other component mutates it, and listings only ever see copies.
// The rule's policy is copied in at creation time, not live-linked.
type Pending struct {
	ID           uuid.UUID
	StudentID    string
	StudentName  string
	School       string
	Analysis     distress.Analysis
	Rule         Rule
	State        PendingState
	ScheduledFor time.Time
	CreatedAt    time.Time
	Sent         map[string]bool // channel ids that completed delivery
}

// Copy returns a snapshot safe to hand outside the scheduler.
func (p *Pending) Copy() Pending {
	cp := *p
	cp.Sent = make(map[string]bool, len(p.Sent))
	for ch, ok := range p.Sent {
		cp.Sent[ch] = ok
	}
	indicators := make([]string, len(p.Analysis.Indicators))
	copy(indicators, p.Analysis.Indicators)
	cp.Analysis.Indicators = indicators
	return cp
}
