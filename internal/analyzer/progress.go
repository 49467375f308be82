package analyzer

// ProgressReporter provides callbacks for reporting analysis progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(totalFiles int)

	// OnExtractionStart is called before extracting files.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each file is extracted.
	OnFileExtracted(path string)

	// OnPersistStart is called when the database write phase begins.
	OnPersistStart()

	// OnComplete is called when the run completes successfully.
	OnComplete(summary *RunSummary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                  {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(totalFiles int) {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileExtracted(path string)        {}
func (n *NoOpProgressReporter) OnPersistStart()                    {}
func (n *NoOpProgressReporter) OnComplete(summary *RunSummary)     {}
