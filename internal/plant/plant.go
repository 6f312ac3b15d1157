// Package plant defines the gateway's view of the external control system:
// a configuration source, an instruction-document store, a hierarchical
// namespace, and the datapoint driver. The authorization core depends only
// on these interfaces; concrete transports live behind them.
package plant

import (
	"context"
	"errors"
)

// ErrMissingKey is returned by a ConfigSource when a requested
// configuration key does not exist.
var ErrMissingKey = errors.New("missing configuration key")

// NodeID identifies a node in the control system's hierarchical namespace.
// IDs are opaque to the gateway; only the provider interprets them.
type NodeID string

// ConfigSource resolves named configuration values from the control system
// (credential paths, API token, instruction-document paths, view name).
type ConfigSource interface {
	// GetValues returns one value per key, in key order. A missing or
	// unresolvable key is an error; no partial results are returned.
	GetValues(ctx context.Context, keys []string) ([]string, error)
}

// DocumentStore reads instruction documents by resolved path.
type DocumentStore interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// NamespaceProvider exposes the control system's hierarchical namespace.
// Used exclusively by the snapshot builder.
type NamespaceProvider interface {
	// ListViews returns the names of all available namespace views.
	ListViews(ctx context.Context) ([]string, error)
	// ViewRoot resolves a view name to its root node.
	ViewRoot(ctx context.Context, view string) (NodeID, error)
	// DisplayName returns a node's human-readable name.
	DisplayName(ctx context.Context, id NodeID) (string, error)
	// BoundDatapoint returns the datapoint identifier a leaf node is bound
	// to, or the empty string for internal nodes.
	BoundDatapoint(ctx context.Context, id NodeID) (string, error)
	// Children lists a node's child nodes.
	Children(ctx context.Context, id NodeID) ([]NodeID, error)
}

// Driver performs the actual datapoint operations against the live system.
// The gateway authorizes every write before calling WriteDatapoint; the
// driver itself enforces nothing.
type Driver interface {
	ReadDatapoint(ctx context.Context, name string) (any, error)
	WriteDatapoint(ctx context.Context, name string, value any) error
}
