package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker tracks and reports progress of a pipeline stage.
type ProgressTracker struct {
	writer  io.Writer
	stage   string
	total   int
	current int
	started bool
	start   time.Time
	mu      sync.Mutex
}

// NewProgressTracker creates a tracker that reports to writer.
// writer: where to write progress output (typically os.Stderr)
// stage: stage label included in every report line
// total: total number of items to process
func NewProgressTracker(writer io.Writer, stage string, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		stage:  stage,
		total:  total,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.start = time.Now()
	p.started = true
	p.current = 0
}

// Increment increases the current progress by the specified amount and
// reports the new position.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current += delta
	if p.current > p.total {
		p.current = p.total
	}
	p.report()
}

// Finish marks the stage as complete and prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.start)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%) - %.1f files/s",
		p.stage, p.current, p.total, percentage, rate)
}
