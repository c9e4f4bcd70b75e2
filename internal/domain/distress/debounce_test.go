package distress

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAnalyzer remembers the order texts were analyzed in.
type recordingAnalyzer struct {
	mu    sync.Mutex
	texts []string
}

func (a *recordingAnalyzer) Analyze(text string) Analysis {
	a.mu.Lock()
	a.texts = append(a.texts, text)
	a.mu.Unlock()
	return Analysis{RiskLevel: RiskLow, DetectedLanguage: LanguageUnknown, Indicators: []string{}}
}

func (a *recordingAnalyzer) seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.texts))
	copy(out, a.texts)
	return out
}

func TestDebounceLatestCallWins(t *testing.T) {
	cache := NewCache(newTestClassifier(), time.Minute)
	d := NewDebouncer(cache, 30*time.Millisecond)

	superseded := []<-chan *Analysis{
		d.Analyze("today was an okay day one"),
		d.Analyze("today was an okay day two"),
		d.Analyze("today was an okay day three"),
		d.Analyze("today was an okay day four"),
	}
	last := d.Analyze("I want to kill myself and end everything")

	for i, ch := range superseded {
		select {
		case got := <-ch:
			assert.Nil(t, got, "superseded call %d must yield nil", i)
		case <-time.After(time.Second):
			t.Fatalf("superseded call %d never resolved", i)
		}
	}

	select {
	case got := <-last:
		require.NotNil(t, got)
		assert.Equal(t, RiskCritical, got.RiskLevel, "only the last call's text is analyzed")
	case <-time.After(time.Second):
		t.Fatal("final call never resolved")
	}
}

func TestDebounceSeparateWindowsBothResolve(t *testing.T) {
	cache := NewCache(newTestClassifier(), time.Minute)
	d := NewDebouncer(cache, 10*time.Millisecond)

	first := <-d.Analyze("i feel sad and lonely today")
	require.NotNil(t, first)
	assert.Equal(t, RiskMedium, first.RiskLevel)

	second := <-d.Analyze("I want to kill myself and end everything")
	require.NotNil(t, second)
	assert.Equal(t, RiskCritical, second.RiskLevel)
}

func TestDebounceStopYieldsNil(t *testing.T) {
	cache := NewCache(newTestClassifier(), time.Minute)
	d := NewDebouncer(cache, time.Hour) // never fires on its own

	ch := d.Analyze("i feel sad and lonely today")
	d.Stop()

	select {
	case got := <-ch:
		assert.Nil(t, got)
	case <-time.After(time.Second):
		t.Fatal("stopped call never resolved")
	}
}

func TestBatchAnalyzeOmitsShortTexts(t *testing.T) {
	cache := NewCache(newTestClassifier(), time.Minute)
	d := NewDebouncer(cache, time.Millisecond)

	texts := []string{
		"Today was a great day at school",
		"ok", // below minimum length, omitted
		"I want to kill myself and end everything",
	}
	got := d.BatchAnalyze(context.Background(), texts)

	require.Len(t, got, 2)
	assert.Equal(t, RiskLow, got[0].RiskLevel)
	assert.Equal(t, RiskCritical, got[1].RiskLevel)
}

func TestBatchAnalyzeChunksRunInOrder(t *testing.T) {
	backend := &recordingAnalyzer{}
	cache := NewCache(backend, time.Minute)
	d := NewDebouncer(cache, time.Millisecond)

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("unique batch text number %02d", i)
	}
	got := d.BatchAnalyze(context.Background(), texts)
	require.Len(t, got, 12)

	seen := backend.seen()
	require.Len(t, seen, 12)
	// Within a chunk the completion order is undefined, but a later
	// chunk's text can never be analyzed before an earlier chunk's.
	chunkOf := make(map[string]int, len(texts))
	for i, text := range texts {
		chunkOf[text] = i / batchChunkSize
	}
	lastChunk := 0
	for _, text := range seen {
		assert.GreaterOrEqual(t, chunkOf[text], lastChunk)
		if chunkOf[text] > lastChunk {
			lastChunk = chunkOf[text]
		}
	}
}

func TestBatchAnalyzeStopsOnCancelledContext(t *testing.T) {
	cache := NewCache(newTestClassifier(), time.Minute)
	d := NewDebouncer(cache, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := d.BatchAnalyze(ctx, []string{"i feel sad and lonely today"})
	assert.Empty(t, got)
}
