package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// Crossing is one vehicle passing a data-collection line
type Crossing struct {
	Time  float64
	VIN   uuid.UUID
	Turn  Turn
	Delay float64 // seconds spent queued before the line
}

// DataCollectionLine counts the vehicles crossing one stop line
type DataCollectionLine struct {
	Name      string
	Crossings []Crossing
}

func (l *DataCollectionLine) record(c Crossing) {
	l.Crossings = append(l.Crossings, c)
}

// BasicMap is the road network of a grid of intersections
type BasicMap struct {
	lines []*DataCollectionLine
}

// DataCollectionLines returns every line in the map
func (m *BasicMap) DataCollectionLines() []*DataCollectionLine {
	return m.lines
}

// DCLHeader is the header row of the data-collection line export
var DCLHeader = []string{"DCLName", "Time", "VIN", "Turn", "Delay"}

// WriteDataCollectionLines writes every crossing of every line to a CSV file
func (m *BasicMap) WriteDataCollectionLines(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close data file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(DCLHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range m.lines {
		for _, c := range l.Crossings {
			rec := []string{
				l.Name,
				strconv.FormatFloat(c.Time, 'f', 2, 64),
				c.VIN.String(),
				c.Turn.String(),
				strconv.FormatFloat(c.Delay, 'f', 2, 64),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("failed to write %s: %w", l.Name, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush data file: %w", err)
	}
	return nil
}
