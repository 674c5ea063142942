package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressReporter reports progress through a list of files.
type ProgressReporter interface {
	Start(total int)
	Step(path string, err error)
	Finish()
}

// SimpleProgress prints one line per file.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int
	current int
	failed  int
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
	}
}

// Start initializes the reporter with the number of files.
func (p *SimpleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.failed = 0
	p.started = time.Now()
}

// Step records the outcome for one file.
func (p *SimpleProgress) Step(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	mark := "✓"
	if err != nil {
		mark = "✗"
		p.failed++
	}
	width := len(fmt.Sprint(p.total))
	fmt.Fprintf(p.writer, "[%*d/%d] %s %s\n", width, p.current, p.total, mark, path)
}

// Finish prints a summary line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.started).Round(time.Millisecond)
	fmt.Fprintf(p.writer, "%d/%d file(s) compiled in %s", p.current-p.failed, p.total, elapsed)
	if p.failed > 0 {
		fmt.Fprintf(p.writer, ", %d failed", p.failed)
	}
	fmt.Fprintln(p.writer)
}

// NoProgress discards progress.
type NoProgress struct{}

func (NoProgress) Start(int)          {}
func (NoProgress) Step(string, error) {}
func (NoProgress) Finish()            {}
