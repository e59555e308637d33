package model

// Writer defines a generic interface for persisting the result of a run.
type Writer interface {
	// Name identifies the writer in logs.
	Name() string

	// Write takes the run result and persists it.
	Write(result *Result) error
}

// Closer is implemented by writers holding connections or file handles.
type Closer interface {
	Close() error
}
