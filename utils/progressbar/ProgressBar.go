// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar is a progress bar that is redrawn in place each time
// Display is called. It does not use concurrency: the owner calls
// Increment after each unit of work and Display whenever the bar
// should be redrawn.
type ProgressBar struct {
	out         io.Writer
	width       int
	maxProgress int
	progress    int
	startTime   time.Time
	bar         strings.Builder
}

// New returns a new ProgressBar that is width characters wide, is
// written to out and reaches 100% after max calls to Increment
func New(out io.Writer, width, max int) *ProgressBar {
	if max < 1 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter
func (p *ProgressBar) Increment() {
	if p.progress < p.maxProgress {
		p.progress++
	}
}

// Progress returns the fraction of work done
func (p *ProgressBar) Progress() float64 {
	return float64(p.progress) / float64(p.maxProgress)
}

// String returns the bar without terminal control characters
func (p *ProgressBar) String() string {
	p.bar.Reset()
	filled := p.progress * p.width / p.maxProgress

	p.bar.WriteString("|")
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", p.width-filled))
	fmt.Fprintf(&p.bar, "| [%v/%v %.2f%% | elapsed: %v]", p.progress,
		p.maxProgress, p.Progress()*100,
		time.Since(p.startTime).Truncate(time.Second))

	return p.bar.String()
}

// Display redraws the progress bar over the current terminal line
func (p *ProgressBar) Display() error {
	_, err := fmt.Fprintf(p.out, "\r\033[K%v", p.String())
	return err
}

// Close moves the output past the bar
func (p *ProgressBar) Close() error {
	_, err := fmt.Fprintln(p.out)
	return err
}
