package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootDirFlag string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codeatlas",
	Short: "Codeatlas - structural analysis for Python codebases",
	Long: `Codeatlas extracts the structure of a Python source tree into a
relational database and derives dependency analytics from it:
file-level dependency graphs, coupling metrics, and circular
dependency detection.

Configuration is read from .codeatlas/config.yml under the analyzed
root, with CODEATLAS_* environment variable overrides.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "root", "r", "", "root directory to analyze (default is the working directory)")
}

// resolveRoot returns the directory all commands operate on.
func resolveRoot() (string, error) {
	if rootDirFlag != "" {
		return rootDirFlag, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
