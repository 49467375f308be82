package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeatlas-dev/codeatlas/internal/analyzer"
)

var quietFlag bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a Python source tree into the database",
	Long: `Analyze discovers Python files, extracts their structure, and
replaces the database contents with the result in one transaction.

The analyzer:
  - Walks the tree with configured include/exclude globs
  - Extracts types, callables, and complexity scores per file
  - Resolves inheritance and call relationships by name
  - Stores everything in .codeatlas/analysis.db

Examples:
  # Analyze the current directory
  codeatlas analyze

  # Analyze with progress bars disabled
  codeatlas analyze --quiet

  # Analyze a specific directory
  codeatlas analyze --root /path/to/project
`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling analysis...")
		cancel()
	}()

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

	progress := NewCLIProgressReporter(quietFlag)
	a := analyzer.New(cfg, st, nil, progress)

	summary, err := a.Populate(ctx, root)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for _, fileErr := range summary.Errors {
		log.Printf("warning: %v", fileErr)
	}
	return nil
}
