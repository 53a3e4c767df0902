package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/intersection-simulations/pkg/policy"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadGeometryKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "grid.yaml", "columns: 3\nrows: 2\ntraffic_level: 0.5\n")

	g, err := LoadGeometry(path)
	require.NoError(t, err)

	want := simulation.DefaultGeometry()
	want.Columns, want.Rows, want.TrafficLevel = 3, 2, 0.5
	assert.Equal(t, want, *g)
	assert.Equal(t, 6, g.Intersections())
}

func TestLoadGeometryErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGeometry(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "not found")

	_, err = LoadGeometry(writeFile(t, dir, "bad.yaml", "columns: [1, 2\n"))
	assert.ErrorContains(t, err, "parsing")

	_, err = LoadGeometry(writeFile(t, dir, "zero.yaml", "rows: 0\n"))
	assert.ErrorContains(t, err, "rows must be at least 1")
}

func TestLoadGeometryOrDefault(t *testing.T) {
	chdir(t, t.TempDir())

	g, err := LoadGeometryOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, simulation.DefaultGeometry(), *g)

	writeFile(t, ".", DefaultGeometryFile, "columns: 4\n")
	g, err = LoadGeometryOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 4, g.Columns)

	t.Setenv("AIM_GEOMETRY_COLUMNS", "5")
	t.Setenv("AIM_GEOMETRY_TRAFFIC_LEVEL", "0.56")
	t.Setenv("AIM_GEOMETRY_ROWS", "many")
	g, err = LoadGeometryOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Columns)
	assert.Equal(t, 1, g.Rows, "unparsable overrides are ignored")
	assert.Equal(t, 0.56, g.TrafficLevel)

	t.Setenv("AIM_GEOMETRY_SPEED_LIMIT", "-1")
	_, err = LoadGeometryOrDefault("")
	assert.Error(t, err)

	_, err = LoadGeometryOrDefault("nope.yaml")
	assert.Error(t, err, "an explicit path must exist")
}

func TestSaveGeometryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "geometry.yaml")
	g := simulation.DefaultGeometry()
	g.DistanceBetween = 200

	require.NoError(t, SaveGeometry(g, path))
	loaded, err := LoadGeometry(path)
	require.NoError(t, err)
	assert.Equal(t, g, *loaded)

	g.LaneWidth = 0
	assert.Error(t, SaveGeometry(g, path))
}

func TestProfilesMissingFileGivesDefaults(t *testing.T) {
	p, err := LoadProfilesFromFile(filepath.Join(t.TempDir(), "profiles.yaml"))
	require.NoError(t, err)
	require.Len(t, p.Profiles, 3)
	for _, profile := range p.Profiles {
		assert.NoError(t, profile.Validate(), profile.Name)
	}
}

func TestProfilesAddRemoveSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), DirName, "profiles.yaml")
	p := &Profiles{}

	require.NoError(t, p.Add(Profile{Name: "peak", Args: []string{"FCFS", "data/peak", "0.5", "0.1", "0.2"}}))
	assert.ErrorContains(t, p.Add(Profile{Name: "peak", Args: []string{"STOP", "d", "0", "0", "0"}}), "already exists")
	assert.Error(t, p.Add(Profile{Name: "short", Args: []string{"FCFS", "d"}}))
	assert.Error(t, p.Add(Profile{Args: []string{"STOP", "d", "0", "0", "0"}}))

	err := p.Add(Profile{Name: "light", Args: []string{"LIGHT", "d", "1", "2", "3"}})
	assert.ErrorIs(t, err, policy.ErrInvalidPolicyIdentifier)
	err = p.Add(Profile{Name: "typo", Args: []string{"FCFS", "d", "1", "x", "3"}})
	assert.ErrorIs(t, err, policy.ErrMalformedNumericParameter)
	assert.NoError(t, p.Add(Profile{Name: "stop", Args: []string{"STOP", "d", "x", "y", "z"}}), "buffers only matter to FCFS")
	assert.True(t, p.Remove("stop"))

	require.NoError(t, SaveProfilesToFile(p, path))

	loaded, err := LoadProfilesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	found, ok := loaded.Find("peak")
	require.True(t, ok)
	assert.Equal(t, "data/peak", found.Args[1])

	assert.True(t, loaded.Remove("peak"))
	assert.False(t, loaded.Remove("peak"))
	assert.Empty(t, loaded.Profiles)
}

func TestLoadProfilesRejectsBadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "profiles.yaml", "profiles: {name: [\n")
	_, err := LoadProfilesFromFile(path)
	assert.ErrorContains(t, err, "failed to parse")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
