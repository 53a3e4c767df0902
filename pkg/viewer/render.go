package viewer

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// Queue lengths at or above these are drawn as busy and congested
const (
	busyQueue      = 3
	congestedQueue = 10
)

var (
	headerColor    = color.New(color.FgCyan, color.Bold)
	idleColor      = color.New(color.FgGreen)
	busyColor      = color.New(color.FgYellow)
	congestedColor = color.New(color.FgRed, color.Bold)
	plainColor     = color.New(color.FgWhite)
)

type renderer struct {
	noColor bool
	// width truncates lines when positive
	width int
	// byMessage colours queues by how congested they are; otherwise every
	// queue is drawn the same
	byMessage bool
}

func (r renderer) paint(c *color.Color, text string) string {
	if r.noColor {
		return text
	}
	return c.Sprint(text)
}

func (r renderer) queue(n int) string {
	text := fmt.Sprintf("%4d", n)
	if !r.byMessage {
		return r.paint(plainColor, text)
	}
	switch {
	case n >= congestedQueue:
		return r.paint(congestedColor, text)
	case n >= busyQueue:
		return r.paint(busyColor, text)
	default:
		return r.paint(idleColor, text)
	}
}

func (r renderer) line(sb *strings.Builder, plain, painted string) {
	if r.width > 0 && len(plain) > r.width {
		painted = plain[:r.width]
	}
	sb.WriteString(painted)
	sb.WriteByte('\n')
}

// frame renders one snapshot
func (r renderer) frame(cfg *simulation.RunConfiguration, snap simulation.Snapshot) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s (%s)  t=%.2fs", cfg.Kind, cfg.Kind.Token(), snap.Time)
	r.line(&sb, title, r.paint(headerColor, title))

	arrived, departed, dropped := snap.Totals()
	totals := fmt.Sprintf("arrived=%d departed=%d dropped=%d", arrived, departed, dropped)
	r.line(&sb, totals, totals)

	if len(snap.Intersections) == 0 {
		return sb.String()
	}

	header := fmt.Sprintf("%-8s %4s %4s %4s %4s  %8s  %s", "NAME", "N", "E", "S", "W", "DELAY", "CONTROL")
	sb.WriteByte('\n')
	r.line(&sb, header, header)

	for _, ix := range snap.Intersections {
		prefix := fmt.Sprintf("%-8s", ix.Name)
		suffix := fmt.Sprintf("  %7.1fs  %s", ix.MeanDelay, ix.Control)

		plain := prefix
		painted := prefix
		for _, q := range ix.Queues {
			plain += fmt.Sprintf(" %4d", q)
			painted += " " + r.queue(q)
		}
		r.line(&sb, plain+suffix, painted+suffix)
	}

	return sb.String()
}
