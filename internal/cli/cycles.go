package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeatlas-dev/codeatlas/internal/depgraph"
)

var cyclesJSON bool

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Detect circular dependencies between files",
	Long: `Cycles finds groups of files that depend on each other in a loop.
Each group is a strongly connected component of the file dependency
graph, reported with one concrete witness cycle.

Run 'codeatlas analyze' first to populate the database.`,
	RunE: runCycles,
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
	cyclesCmd.Flags().BoolVar(&cyclesJSON, "json", false, "Output as JSON")
}

func runCycles(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	st, err := openStore(root, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	graphs, err := depgraph.NewService(st)
	if err != nil {
		return err
	}
	defer graphs.Close()

	groups, err := graphs.CircularDependencies(context.Background())
	if err != nil {
		return fmt.Errorf("failed to detect circular dependencies: %w", err)
	}

	if cyclesJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(groups)
	}

	if len(groups) == 0 {
		fmt.Println("✓ No circular dependencies found")
		return nil
	}

	fmt.Printf("Found %d circular dependency group(s):\n\n", len(groups))
	for i, group := range groups {
		pathByID := make(map[int64]string, len(group.FileIDs))
		for j, id := range group.FileIDs {
			pathByID[id] = group.Paths[j]
		}

		fmt.Printf("Group %d (%d files):\n", i+1, len(group.Paths))
		for _, path := range group.Paths {
			fmt.Printf("  %s\n", path)
		}
		if len(group.Cycle) > 0 {
			hops := make([]string, 0, len(group.Cycle))
			for _, id := range group.Cycle {
				hops = append(hops, pathByID[id])
			}
			fmt.Printf("  Cycle: %s\n", strings.Join(hops, " -> "))
		}
		fmt.Println()
	}
	return nil
}
