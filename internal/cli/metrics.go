package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeatlas-dev/codeatlas/internal/depgraph"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show coupling metrics for analyzed files",
	Long: `Metrics computes per-file coupling numbers from the stored
dependency graph:

- Afferent coupling: files that depend on this file
- Efferent coupling: files this file depends on
- Instability: efferent / (afferent + efferent)
- Distance: how far the file sits from the main sequence

Run 'codeatlas analyze' first to populate the database.`,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output as JSON")
}

func runMetrics(cmd *cobra.Command, args []string) error {
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

	metrics, err := graphs.CouplingMetrics(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute coupling metrics: %w", err)
	}

	if metricsJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(metrics)
	}

	if len(metrics) == 0 {
		fmt.Println("No files analyzed yet. Run 'codeatlas analyze' first.")
		return nil
	}

	fmt.Printf("%-50s %5s %5s %7s %9s\n", "FILE", "IN", "OUT", "INSTAB", "DISTANCE")
	for _, m := range metrics {
		fmt.Printf("%-50s %5d %5d %7.2f %9.2f\n",
			m.Path, m.Afferent, m.Efferent, m.Instability, m.Distance)
	}
	return nil
}
