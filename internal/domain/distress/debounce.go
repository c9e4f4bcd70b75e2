// internal/domain/distress/debounce.go
package distress

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DefaultDebounceWindow is the quiet period a burst of Analyze calls
	// must outlast before the latest text is actually analyzed.
	DefaultDebounceWindow = 500 * time.Millisecond

	// batchChunkSize bounds peak concurrency during bulk analysis.
	batchChunkSize = 5
)

// Debouncer collapses rapid-fire analysis requests (live typing) into a
// single trailing-edge invocation, and chunks bulk jobs. The pending text
// and timer are explicit state owned by the instance, not closure
// variables: only the last call within a window survives, earlier callers
// are handed nil rather than a stale result.
type Debouncer struct {
	mu      sync.Mutex
	cache   *Cache
	window  time.Duration
	timer   *time.Timer
	pending chan *Analysis
	text    string
}

func NewDebouncer(cache *Cache, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{cache: cache, window: window}
}

// Analyze registers text for analysis once the debounce window elapses.
// The returned channel yields exactly one value: the analysis if this call
// was the last one in its window, or nil if a later call superseded it.
// Callers must treat this as "latest wins", not a fan-out.
func (d *Debouncer) Analyze(text string) <-chan *Analysis {
	ch := make(chan *Analysis, 1)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.pending <- nil // supersede, never deliver a stale result
	}
	d.pending = ch
	d.text = text
	d.timer = time.AfterFunc(d.window, d.fire)
	return ch
}

// Stop cancels any pending analysis; its waiter receives nil.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return
	}
	d.timer.Stop()
	d.pending <- nil
	d.timer = nil
	d.pending = nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	ch, text := d.pending, d.text
	d.timer = nil
	d.pending = nil
	d.mu.Unlock()
	if ch == nil {
		return // raced with Stop or a superseding Analyze
	}
	analysis := d.cache.GetOrCompute(text)
	ch <- &analysis
}

// BatchAnalyze processes texts in fixed-size chunks. Chunks run strictly
// in order and each is awaited before the next starts; items within a
// chunk run concurrently with no defined completion order. Texts below the
// minimum length are skipped and contribute no result. Results preserve
// input order; a cancelled context stops before the next chunk.
func (d *Debouncer) BatchAnalyze(ctx context.Context, texts []string) []Analysis {
	results := make([]*Analysis, len(texts))
	for start := 0; start < len(texts); start += batchChunkSize {
		if ctx.Err() != nil {
			break
		}
		end := start + batchChunkSize
		if end > len(texts) {
			end = len(texts)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if utf8.RuneCountInString(strings.TrimSpace(texts[i])) < minTextLength {
				continue
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				analysis := d.cache.GetOrCompute(texts[i])
				results[i] = &analysis
			}(i)
		}
		wg.Wait()
	}

	out := make([]Analysis, 0, len(texts))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
