package trafficdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Movement volumes of one approach in vehicles per hour
type Movement struct {
	Left    float64
	Through float64
	Right   float64
}

// Total returns the combined volume of the approach
func (m Movement) Total() float64 {
	return m.Left + m.Through + m.Right
}

// Volumes maps every approach to its hourly movement volumes
type Volumes map[Approach]Movement

// VolumeHeader is the expected header of a volume file
var VolumeHeader = []string{"Approach", "Left", "Through", "Right"}

// LoadVolumes reads a volume file from disk
func LoadVolumes(path string) (Volumes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume file: %w", err)
	}
	defer f.Close()

	v, err := ReadVolumes(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume file %s: %w", path, err)
	}
	return v, nil
}

// ReadVolumes parses a volume table. Approaches missing from the table carry
// no traffic.
func ReadVolumes(r io.Reader) (Volumes, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header: %w", err)
	}
	if err := checkHeader(header, VolumeHeader); err != nil {
		return nil, err
	}

	volumes := make(Volumes)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		approach, err := ParseApproach(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := volumes[approach]; dup {
			return nil, fmt.Errorf("line %d: duplicate approach %s", line, approach)
		}

		var vals [3]float64
		for i := range vals {
			vals[i], err = parseNonNegative(rec[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, VolumeHeader[i+1], err)
			}
		}
		volumes[approach] = Movement{Left: vals[0], Through: vals[1], Right: vals[2]}
	}

	return volumes, nil
}

func checkHeader(got, want []string) error {
	if len(got) < len(want) {
		return fmt.Errorf("header %v: expected columns %v", got, want)
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), col) {
			return fmt.Errorf("header column %d is %q, expected %q", i+1, got[i], col)
		}
	}
	return nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %g", v)
	}
	return v, nil
}
