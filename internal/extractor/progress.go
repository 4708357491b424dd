package extractor

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
// The extractor serializes calls, so implementations need no locking.
type ProgressReporter interface {
	// OnDiscoveryStart is called when the directory walk begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when the walk finishes.
	OnDiscoveryComplete(files int)

	// OnFileProcessingStart is called before files are parsed.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file, supported or not.
	OnFileProcessed(fileName string)

	// OnComplete is called when extraction completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)        {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)      {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)              {}
