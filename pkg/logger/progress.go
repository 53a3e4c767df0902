package logger

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar renders the completion of a fixed amount of work on one line
type ProgressBar struct {
	total   float64
	current float64
	width   int
	message string
	drawn   int // last percentage drawn, -1 before the first draw
	w       io.Writer
	noColor bool
}

// NewProgressBar creates a progress bar writing to the default logger output
func NewProgressBar(total float64, message string) *ProgressBar {
	w, noColor := output()
	return &ProgressBar{
		total:   total,
		width:   40,
		message: message,
		drawn:   -1,
		w:       w,
		noColor: noColor,
	}
}

// Update moves the bar to current. The line is only redrawn when the whole
// percentage changes.
func (p *ProgressBar) Update(current float64) {
	p.current = current
	if pct := p.percent(); pct != p.drawn {
		p.draw(pct)
	}
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw(100)
	_, _ = fmt.Fprintln(p.w)
}

func (p *ProgressBar) percent() int {
	if p.total <= 0 {
		return 100
	}
	pct := int(p.current / p.total * 100)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func (p *ProgressBar) draw(pct int) {
	p.drawn = pct
	filled := pct * p.width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	if p.noColor {
		_, _ = fmt.Fprintf(p.w, "\r%s: [%s] %3d%%", p.message, bar, pct)
		return
	}
	_, _ = fmt.Fprintf(p.w, "\r%s: %s %3d%%", p.message, levelColors[InfoLevel].Sprint(bar), pct)
}
