// Package config loads the on-disk settings of the experiment driver: the
// geometry descriptor of a run and the saved run profiles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// DefaultGeometryFile is looked up in the working directory when no
// geometry file is given
const DefaultGeometryFile = "geometry.yaml"

// LoadGeometry loads a geometry descriptor from a YAML file. Fields the file
// omits keep their default values.
func LoadGeometry(path string) (*simulation.GeometryParameters, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("geometry file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading geometry file: %w", err)
	}

	geometry := simulation.DefaultGeometry()
	if err := yaml.Unmarshal(data, &geometry); err != nil {
		return nil, fmt.Errorf("error parsing geometry file: %w", err)
	}

	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}

	return &geometry, nil
}

// LoadGeometryOrDefault loads the geometry at path. An empty path falls back
// to DefaultGeometryFile in the working directory, then to the default
// geometry. Environment overrides are applied last.
func LoadGeometryOrDefault(path string) (*simulation.GeometryParameters, error) {
	var geometry *simulation.GeometryParameters

	switch {
	case path != "":
		g, err := LoadGeometry(path)
		if err != nil {
			return nil, err
		}
		geometry = g
	default:
		if _, err := os.Stat(DefaultGeometryFile); err == nil {
			g, err := LoadGeometry(DefaultGeometryFile)
			if err != nil {
				return nil, err
			}
			logger.Debugf("Loaded geometry from: %s", DefaultGeometryFile)
			geometry = g
		}
	}

	if geometry == nil {
		g := simulation.DefaultGeometry()
		geometry = &g
	}

	MergeGeometryWithEnvironment(geometry)

	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("geometry validation failed after overrides: %w", err)
	}
	return geometry, nil
}

// SaveGeometry writes a validated geometry descriptor to path
func SaveGeometry(geometry simulation.GeometryParameters, path string) error {
	if err := geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}

	data, err := yaml.Marshal(geometry)
	if err != nil {
		return fmt.Errorf("error marshaling geometry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing geometry file: %w", err)
	}

	return nil
}

// MergeGeometryWithEnvironment applies AIM_GEOMETRY_* overrides. Values that
// do not parse are ignored.
func MergeGeometryWithEnvironment(geometry *simulation.GeometryParameters) {
	ints := map[string]*int{
		"AIM_GEOMETRY_COLUMNS":        &geometry.Columns,
		"AIM_GEOMETRY_ROWS":           &geometry.Rows,
		"AIM_GEOMETRY_LANES_PER_ROAD": &geometry.LanesPerRoad,
	}
	for key, field := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*field = n
			}
		}
	}

	floats := map[string]*float64{
		"AIM_GEOMETRY_LANE_WIDTH":       &geometry.LaneWidth,
		"AIM_GEOMETRY_SPEED_LIMIT":      &geometry.SpeedLimit,
		"AIM_GEOMETRY_MEDIAN_SIZE":      &geometry.MedianSize,
		"AIM_GEOMETRY_DISTANCE_BETWEEN": &geometry.DistanceBetween,
		"AIM_GEOMETRY_TRAFFIC_LEVEL":    &geometry.TrafficLevel,
		"AIM_GEOMETRY_STOP_DISTANCE":    &geometry.StopDistance,
	}
	for key, field := range floats {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*field = f
			}
		}
	}
}
