package trafficdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApproach(t *testing.T) {
	for in, want := range map[string]Approach{"N": North, "east": East, " SB ": South, "W": West} {
		got, err := ParseApproach(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseApproach("up")
	assert.Error(t, err)

	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, East, West.Opposite())
	assert.Equal(t, "W", West.String())
}

func TestReadVolumes(t *testing.T) {
	in := `Approach,Left,Through,Right
# morning peak
N,60,480,120
S, 30, 300, 90
East,0,200,0
`
	v, err := ReadVolumes(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, v, 3)
	assert.Equal(t, Movement{Left: 60, Through: 480, Right: 120}, v[North])
	assert.Equal(t, 420.0, v[South].Total())
	assert.Equal(t, 200.0, v[East].Total())
	assert.Zero(t, v[West].Total())
}

func TestReadVolumesErrors(t *testing.T) {
	tests := map[string]string{
		"bad header":   "Road,Left,Through,Right\nN,1,2,3\n",
		"bad approach": "Approach,Left,Through,Right\nX,1,2,3\n",
		"duplicate":    "Approach,Left,Through,Right\nN,1,2,3\nN,1,2,3\n",
		"negative":     "Approach,Left,Through,Right\nN,1,-2,3\n",
		"not a number": "Approach,Left,Through,Right\nN,1,two,3\n",
		"short row":    "Approach,Left,Through,Right\nN,1,2\n",
		"infinite":     "Approach,Left,Through,Right\nN,0,Inf,0\n",
		"nan":          "Approach,Left,Through,Right\nN,NaN,1,0\n",
		"empty":        "",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadVolumes(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestReadPhases(t *testing.T) {
	in := `Duration,Green,Clearance
30,N S,4
25,E;W
`
	phases, err := ReadPhases(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, phases, 2)

	assert.Equal(t, 30.0, phases[0].Duration)
	assert.Equal(t, []Approach{North, South}, phases[0].Green)
	assert.Equal(t, 34.0, phases[0].Length())
	assert.True(t, phases[1].IsGreen(West))
	assert.False(t, phases[1].IsGreen(North))
	assert.Zero(t, phases[1].Clearance)
}

func TestReadPhasesErrors(t *testing.T) {
	tests := map[string]string{
		"no phases":    "Duration,Green\n",
		"zero cycle":   "Duration,Green\n0,N\n",
		"bad approach": "Duration,Green\n10,N Q\n",
		"bad duration": "Duration,Green\nlong,N\n",
		"bad header":   "Time,Green\n10,N\n",
		"nan duration": "Duration,Green\nNaN,N S\n",
		"inf duration": "Duration,Green\n+Inf,N S\n",
		"nan clear":    "Duration,Green,Clearance\n10,N S,NaN\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPhases(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v.csv"), []byte("Approach,Left,Through,Right\nN,1,2,3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.csv"), []byte("Duration,Green\n10,N\n"), 0644))

	v, err := LoadVolumes(filepath.Join(dir, "v.csv"))
	require.NoError(t, err)
	assert.Equal(t, 6.0, v[North].Total())

	p, err := LoadPhases(filepath.Join(dir, "p.csv"))
	require.NoError(t, err)
	assert.Len(t, p, 1)

	_, err = LoadVolumes(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
