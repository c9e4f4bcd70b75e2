// internal/domain/distress/classifier.go
package distress

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// Classifier scores free text against the weighted phrase lexicon and maps
// the result to a risk level. Analyze is a pure function of its input and
// never fails across its boundary: any internal fault degrades to the safe
// low/unknown/zero-confidence result.
type Classifier struct {
	byLanguage map[Language][]Entry
	languages  []Language // stable scan order
	logger     *logrus.Entry
}

// NewClassifier indexes the given lexicon by language. Pass
// DefaultLexicon() for the built-in phrase lists.
func NewClassifier(lexicon []Entry, logger *logrus.Entry) *Classifier {
	c := &Classifier{
		byLanguage: make(map[Language][]Entry),
		logger:     logger,
	}
	for _, e := range lexicon {
		if _, ok := c.byLanguage[e.Language]; !ok {
			c.languages = append(c.languages, e.Language)
		}
		c.byLanguage[e.Language] = append(c.byLanguage[e.Language], e)
	}
	return c
}

// Analyze classifies a single text blob.
//
// Texts shorter than the minimum length short-circuit to the safe default
// without touching the lexicon. Otherwise the text is normalized, a
// language is detected by raw hit count, and every phrase of that single
// language's lexicon is matched as a substring. Overlapping and repeated
// matches all count: repeated distress language is meant to raise the
// score.
func (c *Classifier) Analyze(text string) (result Analysis) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.WithField("panic", r).Error("Classifier fault; degrading to safe result")
			}
			result = safeAnalysis()
		}
	}()

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return safeAnalysis()
	}

	normalized := Normalize(text)
	lang := c.detectLanguage(normalized)
	if lang == LanguageUnknown {
		return safeAnalysis()
	}

	var (
		totalWeight int
		maxWeight   int
		indicators  []string
	)
	for _, e := range c.byLanguage[lang] {
		n := strings.Count(normalized, e.Phrase)
		if n == 0 {
			continue
		}
		totalWeight += n * e.Weight
		if e.Weight > maxWeight {
			maxWeight = e.Weight
		}
		for i := 0; i < n; i++ {
			indicators = append(indicators, e.Phrase)
		}
	}
	if indicators == nil {
		indicators = []string{}
	}

	return Analysis{
		RiskLevel:        levelFor(totalWeight, maxWeight),
		DetectedLanguage: lang,
		Confidence:       confidenceFor(totalWeight, normalized),
		Indicators:       indicators,
	}
}

// detectLanguage picks the language whose lexicon yields the highest raw
// hit count. A strict tie between languages, or fewer hits than the
// minimum, yields LanguageUnknown.
func (c *Classifier) detectLanguage(normalized string) Language {
	best := LanguageUnknown
	bestHits := 0
	tied := false
	for _, lang := range c.languages {
		hits := 0
		for _, e := range c.byLanguage[lang] {
			hits += strings.Count(normalized, e.Phrase)
		}
		switch {
		case hits > bestHits:
			best, bestHits, tied = lang, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if tied || bestHits < minLanguageHits {
		return LanguageUnknown
	}
	return best
}

// levelFor maps accumulated weight to a risk level. CRITICAL requires a
// single matched phrase at the critical weight: a pile of mild phrases
// saturates at HIGH, so a CRITICAL result always carries at least one
// critical indicator.
func levelFor(totalWeight, maxWeight int) RiskLevel {
	switch {
	case totalWeight >= criticalThreshold && maxWeight >= criticalPhraseWeight:
		return RiskCritical
	case totalWeight >= highThreshold:
		return RiskHigh
	case totalWeight >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// confidenceFor reflects hit density: matched weight relative to text
// length, scaled and clamped to [0,1].
func confidenceFor(totalWeight int, normalized string) float64 {
	length := utf8.RuneCountInString(normalized)
	if length == 0 || totalWeight == 0 {
		return 0
	}
	return math.Min(1, float64(totalWeight)*confidenceScale/float64(length))
}

// Normalize prepares text for phrase matching: Unicode NFC (Lithuanian
// diacritics must compare canonically), lowercase, punctuation and runs of
// whitespace folded to single spaces.
func Normalize(text string) string {
	t := strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
	var b strings.Builder
	b.Grow(len(t))
	lastSpace := false
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
