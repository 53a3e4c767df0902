package trafficdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Phase is one interval of a signal cycle
type Phase struct {
	// Duration of the green interval in seconds
	Duration float64
	// Green lists the approaches that may enter during the phase
	Green []Approach
	// Clearance is the yellow plus all-red time that follows, in seconds
	Clearance float64
}

// Length returns the time the phase occupies in the cycle
func (p Phase) Length() float64 {
	return p.Duration + p.Clearance
}

// IsGreen reports whether a may enter during the phase
func (p Phase) IsGreen(a Approach) bool {
	for _, g := range p.Green {
		if g == a {
			return true
		}
	}
	return false
}

// PhaseHeader is the expected header of a phase file. Clearance is optional.
var PhaseHeader = []string{"Duration", "Green", "Clearance"}

// LoadPhases reads a phase file from disk
func LoadPhases(path string) ([]Phase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phase file: %w", err)
	}
	defer f.Close()

	p, err := ReadPhases(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase file %s: %w", path, err)
	}
	return p, nil
}

// ReadPhases parses a signal phase table. Green approaches are separated by
// spaces, semicolons or pipes.
func ReadPhases(r io.Reader) ([]Phase, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header: %w", err)
	}
	if err := checkHeader(header, PhaseHeader[:2]); err != nil {
		return nil, err
	}

	var phases []Phase
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 columns, got %d", line, len(rec))
		}

		var p Phase
		if p.Duration, err = parseNonNegative(rec[0]); err != nil {
			return nil, fmt.Errorf("line %d, Duration: %w", line, err)
		}
		fields := strings.FieldsFunc(rec[1], func(r rune) bool {
			return r == ' ' || r == ';' || r == '|'
		})
		for _, f := range fields {
			a, err := ParseApproach(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			p.Green = append(p.Green, a)
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			if p.Clearance, err = parseNonNegative(rec[2]); err != nil {
				return nil, fmt.Errorf("line %d, Clearance: %w", line, err)
			}
		}
		phases = append(phases, p)
	}

	if len(phases) == 0 {
		return nil, errors.New("no phases defined")
	}
	var cycle float64
	for _, p := range phases {
		cycle += p.Length()
	}
	if cycle <= 0 {
		return nil, errors.New("signal cycle has zero length")
	}

	return phases, nil
}
