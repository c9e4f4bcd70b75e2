package distress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAnalyzer stands in for the classifier and counts invocations.
type countingAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (a *countingAnalyzer) Analyze(text string) Analysis {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return Analysis{
		RiskLevel:        RiskMedium,
		DetectedLanguage: LanguageEnglish,
		Confidence:       0.5,
		Indicators:       []string{"sad"},
	}
}

func (a *countingAnalyzer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func TestGetOrComputeMemoizes(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	first := c.GetOrCompute("i feel sad today honestly")
	second := c.GetOrCompute("i feel sad today honestly")

	require.Equal(t, first, second)
	assert.Equal(t, 1, backend.count(), "second lookup must be a cache hit")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestGetOrComputeKeyIsNormalized(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	c.GetOrCompute("I Feel Sad Today, honestly!")
	c.GetOrCompute("  i feel sad today honestly ")

	assert.Equal(t, 1, backend.count(), "texts identical after normalization share one entry")
}

func TestTTLExpiryRecomputes(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.GetOrCompute("i feel sad today honestly")
	c.GetOrCompute("i feel sad today honestly")
	require.Equal(t, 1, backend.count())

	current = current.Add(time.Minute + time.Second)
	c.GetOrCompute("i feel sad today honestly")
	assert.Equal(t, 2, backend.count(), "entry past TTL must be recomputed")
}

func TestClearResetsEntriesAndAccounting(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	c.GetOrCompute("i feel sad today honestly")
	c.GetOrCompute("i feel sad today honestly")
	c.Clear()

	stats := c.Stats()
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.HitRate)

	c.GetOrCompute("i feel sad today honestly")
	assert.Equal(t, 2, backend.count())
}

func TestPurgeDropsOnlyExpired(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.GetOrCompute("first text to analyze here")
	current = current.Add(40 * time.Second)
	c.GetOrCompute("second text to analyze here")
	current = current.Add(30 * time.Second) // first is now 70s old, second 30s

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 1, stats.Expired)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Stats().Total)
}

func TestCachedResultIsASnapshot(t *testing.T) {
	backend := &countingAnalyzer{}
	c := NewCache(backend, time.Minute)

	got := c.GetOrCompute("i feel sad today honestly")
	got.Indicators[0] = "mutated"

	again := c.GetOrCompute("i feel sad today honestly")
	assert.Equal(t, []string{"sad"}, again.Indicators, "caller mutation must not reach the cache")
}
