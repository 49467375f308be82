package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/codeatlas-dev/codeatlas/internal/analyzer"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(totalFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Analyzing %d files\n", totalFiles)
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Extracting structure"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileExtracted(path string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnPersistStart() {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	log.Println("Writing database...")
}

func (c *CLIProgressReporter) OnComplete(summary *analyzer.RunSummary) {
	if c.quiet {
		return
	}

	fmt.Println()
	fmt.Printf("✓ Analysis complete in %.1fs (run %s)\n",
		summary.Duration.Seconds(), summary.RunID)
	fmt.Printf("  Files:         %d\n", summary.Files)
	fmt.Printf("  Types:         %d\n", summary.Types)
	fmt.Printf("  Callables:     %d\n", summary.Callables)
	fmt.Printf("  Relationships: %d\n", summary.Relationships)
	if summary.Unresolved > 0 || summary.Ambiguous > 0 {
		fmt.Printf("  Unresolved: %d, ambiguous: %d\n", summary.Unresolved, summary.Ambiguous)
	}
	if len(summary.Errors) > 0 {
		fmt.Printf("  Errors:        %d\n", len(summary.Errors))
	}
}
