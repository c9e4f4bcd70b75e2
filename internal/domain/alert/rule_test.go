package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing_alert_bot/internal/domain/distress"
)

func TestSelectInclusiveHierarchy(t *testing.T) {
	rules := DefaultRuleSet()

	critical := rules.Select(distress.RiskCritical)
	require.Len(t, critical, 2, "a critical analysis satisfies both HIGH and CRITICAL triggers")
	assert.Equal(t, "critical-immediate", critical[0].ID, "insertion order is preserved")
	assert.Equal(t, "high-delayed", critical[1].ID)

	high := rules.Select(distress.RiskHigh)
	require.Len(t, high, 1)
	assert.Equal(t, "high-delayed", high[0].ID)

	assert.Empty(t, rules.Select(distress.RiskMedium))
	assert.Empty(t, rules.Select(distress.RiskLow))
}

func TestSelectSkipsInactiveRules(t *testing.T) {
	rules := NewRuleSet(
		Rule{ID: "off", TriggerLevel: distress.RiskHigh, NotifyTeachers: true, IsActive: false},
		Rule{ID: "on", TriggerLevel: distress.RiskHigh, NotifyTeachers: true, IsActive: true},
	)

	got := rules.Select(distress.RiskCritical)
	require.Len(t, got, 1)
	assert.Equal(t, "on", got[0].ID)
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "valid critical", rule: Rule{ID: "a", TriggerLevel: distress.RiskCritical}},
		{name: "valid high with delay", rule: Rule{ID: "b", TriggerLevel: distress.RiskHigh, DelayMinutes: 15}},
		{name: "medium trigger rejected", rule: Rule{ID: "c", TriggerLevel: distress.RiskMedium}, wantErr: true},
		{name: "low trigger rejected", rule: Rule{ID: "d", TriggerLevel: distress.RiskLow}, wantErr: true},
		{name: "negative delay rejected", rule: Rule{ID: "e", TriggerLevel: distress.RiskHigh, DelayMinutes: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRuleMatches(t *testing.T) {
	high := Rule{TriggerLevel: distress.RiskHigh}
	critical := Rule{TriggerLevel: distress.RiskCritical}

	assert.True(t, high.Matches(distress.RiskHigh))
	assert.True(t, high.Matches(distress.RiskCritical))
	assert.False(t, high.Matches(distress.RiskMedium))

	assert.True(t, critical.Matches(distress.RiskCritical))
	assert.False(t, critical.Matches(distress.RiskHigh))
}

func TestPendingCopyIsIndependent(t *testing.T) {
	p := &Pending{
		Analysis: distress.Analysis{Indicators: []string{"sad"}},
		Sent:     map[string]bool{"email": true},
	}

	cp := p.Copy()
	cp.Sent["telegram"] = true
	cp.Analysis.Indicators[0] = "mutated"

	assert.Equal(t, map[string]bool{"email": true}, p.Sent)
	assert.Equal(t, []string{"sad"}, p.Analysis.Indicators)
}
