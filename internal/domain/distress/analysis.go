// internal/domain/distress/analysis.go
package distress

// RiskLevel is the ordinal severity bucket assigned to a piece of text.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskRanks orders levels so that rules can be matched inclusively
// (a HIGH trigger also fires on CRITICAL analyses).
var riskRanks = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank returns the ordinal position of the level. Unknown values rank
// below RiskLow so a corrupt level can never trigger a notification.
func (l RiskLevel) Rank() int {
	if r, ok := riskRanks[l]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether l is as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Rank() >= other.Rank()
}

// Language identifies which lexicon a text was scored against.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageLithuanian Language = "lt"
	LanguageUnknown    Language = "unknown"
)

// Analysis is the value object produced for every analyzed text.
// It is immutable once returned; callers must not mutate Indicators.
type Analysis struct {
	RiskLevel        RiskLevel
	DetectedLanguage Language
	Confidence       float64  // in [0,1], reflects matched weight relative to text length
	Indicators       []string // matched lexicon phrases, one entry per occurrence
}

// safeAnalysis is the degraded result used for trivial input and for any
// internal fault: the classifier never propagates an error to its caller.
func safeAnalysis() Analysis {
	return Analysis{
		RiskLevel:        RiskLow,
		DetectedLanguage: LanguageUnknown,
		Confidence:       0,
		Indicators:       []string{},
	}
}
