package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
	"github.com/picogrid/intersection-simulations/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies and data sets",
	Long:  `List the registered intersection policies and the traffic data sets found under the data directory`,
	RunE:  listPolicies,
}

func init() {
	listCmd.Flags().String("data", "", "directory to search for data sets (default is ./data)")
}

func listPolicies(cmd *cobra.Command, args []string) error {
	kinds := simulation.DefaultRegistry.List()
	if len(kinds) == 0 {
		fmt.Println("No policies registered")
		return nil
	}

	table := logger.NewTable("TOKEN", "POLICY", "DESCRIPTION")
	for _, k := range kinds {
		table.AddRow(k.Token(), k.String(), k.Description())
	}
	table.Print()
	fmt.Println()

	root, _ := cmd.Flags().GetString("data")
	if root == "" {
		root = dataRoot()
	}

	sets, err := utils.DiscoverDataSets(root)
	if err != nil {
		return fmt.Errorf("failed to discover data sets: %w", err)
	}

	if len(sets) == 0 {
		fmt.Printf("No data sets found under %s\n", root)
		return nil
	}

	table = logger.NewTable("DATA SET", "VEH/H", "POLICIES")
	for _, set := range sets {
		tokens := make([]string, 0, len(kinds))
		for _, k := range set.Policies() {
			tokens = append(tokens, k.Token())
		}
		table.AddRow(set.Path, fmt.Sprintf("%.0f", set.Volume), strings.Join(tokens, " "))
	}
	table.Print()

	return nil
}

// dataRoot returns ./data when present, otherwise the data directory of the
// enclosing project
func dataRoot() string {
	if info, err := os.Stat("data"); err == nil && info.IsDir() {
		return "data"
	}
	if root, err := utils.FindProjectRoot(); err == nil {
		return filepath.Join(root, "data")
	}
	return "data"
}
