package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// ArtifactName derives the data-collection line file name of a run from its
// arguments. Path separators in the arguments become underscores.
func ArtifactName(args []string, suffix string) string {
	name := "ts_dcl_" + strings.Join(args, "_")
	if suffix != "" {
		name += "_" + suffix
	}
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return name + ".csv"
}

// Export writes the data-collection line measurements of m to dir/name and
// returns the written path.
func Export(m simulation.DataMap, dir, name string) (string, error) {
	path := name
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &ExportError{Path: dir, Err: err}
		}
		path = filepath.Join(dir, name)
	}

	if err := m.WriteDataCollectionLines(path); err != nil {
		return "", &ExportError{Path: path, Err: err}
	}
	return path, nil
}
