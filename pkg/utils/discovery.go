package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/policy"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/trafficdata"
)

// DataSet is a directory holding the traffic files of a run
type DataSet struct {
	Path string
	// Volume is the hourly demand summed over every approach
	Volume    float64
	HasPhases bool
}

// Policies returns the policies that can run on the data set
func (d DataSet) Policies() []simulation.Kind {
	kinds := []simulation.Kind{simulation.KindReservationFCFS}
	if d.HasPhases {
		kinds = append(kinds, simulation.KindApproxMultiPhaseSignal)
	}
	return append(kinds, simulation.KindApproxStopSign)
}

// DiscoverDataSets finds every directory under root that holds a volume
// file. Paths are joined onto root, so a relative root gives paths usable as
// the data directory argument of a run.
func DiscoverDataSets(root string) ([]DataSet, error) {
	var sets []DataSet

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != policy.VolumeFileName {
			return nil
		}

		set, err := loadDataSet(filepath.Dir(path))
		if err != nil {
			// Log error but continue scanning
			logger.Warnf("Skipping %s: %v", path, err)
			return nil
		}
		sets = append(sets, *set)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for data sets: %w", err)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Path < sets[j].Path })
	return sets, nil
}

func loadDataSet(dir string) (*DataSet, error) {
	volumes, err := trafficdata.LoadVolumes(filepath.Join(dir, policy.VolumeFileName))
	if err != nil {
		return nil, err
	}

	set := &DataSet{Path: filepath.ToSlash(dir)}
	for _, m := range volumes {
		set.Volume += m.Total()
	}

	if _, err := os.Stat(filepath.Join(dir, policy.PhaseFileName)); err == nil {
		if _, err := trafficdata.LoadPhases(filepath.Join(dir, policy.PhaseFileName)); err != nil {
			return nil, err
		}
		set.HasPhases = true
	}

	return set, nil
}

// FindProjectRoot finds the project root by looking for go.mod
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up until we find go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
