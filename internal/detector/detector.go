package detector

import "context"

// Detector is a strategy that determines if a managed application is running.
// Implementations may enumerate the process table or run a custom check command.
// It must be safe for concurrent use.
type Detector interface {
	// Alive returns true if the application is detected as running.
	Alive(ctx context.Context) (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}
