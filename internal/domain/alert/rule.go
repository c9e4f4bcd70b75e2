// internal/domain/alert/rule.go
package alert

import (
	"fmt"

	"wellbeing_alert_bot/internal/domain/distress"
)

// Rule is a notification policy: who gets told about an analysis at a given
// risk level, and how long after the fact. The set is static/configurable
// and independent of any single analysis.
type Rule struct {
	ID             string
	TriggerLevel   distress.RiskLevel // HIGH or CRITICAL
	NotifyTeachers bool
	NotifyAdmins   bool
	NotifyParents  bool
	DelayMinutes   int
	IsActive       bool
}

// Validate rejects configurations the scheduler must skip: only HIGH and
// CRITICAL trigger levels exist, and delays cannot be negative.
func (r Rule) Validate() error {
	if r.TriggerLevel != distress.RiskHigh && r.TriggerLevel != distress.RiskCritical {
		return fmt.Errorf("rule %q: invalid trigger level %q", r.ID, r.TriggerLevel)
	}
	if r.DelayMinutes < 0 {
		return fmt.Errorf("rule %q: negative delay %d", r.ID, r.DelayMinutes)
	}
	return nil
}

// Matches implements the inclusive trigger hierarchy: a HIGH rule fires on
// HIGH and CRITICAL analyses, a CRITICAL rule only on CRITICAL.
func (r Rule) Matches(level distress.RiskLevel) bool {
	return level.AtLeast(r.TriggerLevel)
}

// RuleSet holds rules in insertion order. Selection is a pure function
// with no I/O; the set itself is immutable after construction, so rule
// edits mean building a new set and never retroactively change
// notifications already scheduled from the old one.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return &RuleSet{rules: rs}
}

// DefaultRuleSet mirrors the stock policy: critical alerts go out to
// teachers and admins immediately; high alerts reach teachers after a
// 15-minute cool-down.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet(
		Rule{
			ID:             "critical-immediate",
			TriggerLevel:   distress.RiskCritical,
			NotifyTeachers: true,
			NotifyAdmins:   true,
			DelayMinutes:   0,
			IsActive:       true,
		},
		Rule{
			ID:             "high-delayed",
			TriggerLevel:   distress.RiskHigh,
			NotifyTeachers: true,
			DelayMinutes:   15,
			IsActive:       true,
		},
	)
}

// Select returns every active rule satisfied by the given risk level, in
// insertion order.
func (s *RuleSet) Select(level distress.RiskLevel) []Rule {
	var out []Rule
	for _, r := range s.rules {
		if r.IsActive && r.Matches(level) {
			out = append(out, r)
		}
	}
	return out
}

// Rules returns a copy of the full set, for listing.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}
