package history

import (
	"context"
	"time"
)

// EventType defines the kind of action issued against a managed process.
type EventType string

const (
	EventClose  EventType = "close"
	EventLaunch EventType = "launch"
)

// Event records one command issued by the reconciler together with its
// captured output.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	Command    string    `json:"command"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	Error      string    `json:"error,omitempty"`
}

// Sink is a destination for action history.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Nullable returns nil for an empty string so SQL sinks store NULL.
func Nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
