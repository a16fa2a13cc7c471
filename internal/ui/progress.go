package ui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Progress reports completion of parallel package tasks, one line per task.
// It is safe for concurrent use.
type Progress struct {
	out    io.Writer
	total  int
	done   atomic.Int32
	failed atomic.Int32
	mu     sync.Mutex
}

// NewProgress creates a progress tracker for n tasks.
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{out: out, total: total}
}

// Done marks one task as completed and prints the current progress.
func (p *Progress) Done(label string) {
	p.step(label, &p.done)
}

// Fail marks one task as failed. It still counts toward the total so the
// counter reaches n/n.
func (p *Progress) Fail(label string, err error) {
	p.step(fmt.Sprintf("%s: %v", label, err), &p.failed)
}

func (p *Progress) step(label string, counter *atomic.Int32) {
	counter.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	n := int(p.done.Load() + p.failed.Load())
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s\n", n, p.total, label)
}

// Log prints an informational message within the progress context.
func (p *Progress) Log(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Summary returns e.g. "3 done, 1 failed".
func (p *Progress) Summary() string {
	return fmt.Sprintf("%d done, %d failed", p.done.Load(), p.failed.Load())
}
