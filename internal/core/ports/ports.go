package ports

// FileSource abstracts a readable rendition of one revision's source
// tree. How the content is materialized (working tree, checkout, cache)
// is outside the engine; a source only lists and reads files.
type FileSource interface {
	// List returns repository-relative paths of candidate files, sorted.
	List() ([]string, error)
	// Read returns the content of one listed file.
	Read(path string) ([]byte, error)
}

// RunRecorder persists a summary row per extraction run.
type RunRecorder interface {
	RecordRun(run RunSummary) error
}

// RunSummary captures the bookkeeping persisted after each run.
type RunSummary struct {
	RunID            string
	BaselineRevision string
	CurrentRevision  string
	FilesScanned     int
	FilesFailed      int
	FactCount        int
	Added            int
	Removed          int
	Modified         int
	DurationMillis   int64
}
