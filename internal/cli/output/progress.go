package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar reports transfer progress on a terminal line. It implements
// io.Writer, counting the bytes written through it, so it can sit behind an
// io.MultiWriter or io.TeeReader.
type ProgressBar struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a progress bar that draws on w.
func NewProgressBar(w io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		width: 30,
	}
}

// SetTotal sets the expected size. Zero or negative shows a byte counter.
func (p *ProgressBar) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Write counts len(b) bytes of progress.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.Add(int64(len(b)))
	return len(b), nil
}

// Add records n bytes of progress.
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render()
}

// Current returns the bytes counted so far.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}

	ratio := min(float64(p.current)/float64(p.total), 1)
	filled := int(float64(p.width) * ratio)

	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("#", filled),
		strings.Repeat(".", p.width-filled),
		ratio*100,
		FormatBytes(p.current),
		FormatBytes(p.total),
	)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
