// Package namespace builds an in-memory snapshot of the control system's
// hierarchical namespace. The snapshot is built once during runtime-state
// initialization and read-only afterwards; staleness relative to the live
// namespace is accepted.
package namespace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/otbridge/plantgate/internal/plant"
)

// ErrUnavailable marks a namespace that cannot be snapshotted: the view is
// absent, the provider fails, or the tree is deeper than maxDepth (which on
// a well-formed plant tree only happens when the source graph has a cycle).
var ErrUnavailable = errors.New("namespace unavailable")

// maxDepth bounds the recursive walk. The live namespace is assumed to be a
// tree, but the provider is external and is not trusted to guarantee it.
const maxDepth = 32

// Node is one node of the snapshot. Exactly one of Datapoint and Children
// is set: leaves carry the bound datapoint identifier, internal nodes map
// child display names to subtrees.
type Node struct {
	Datapoint string
	Children  map[string]*Node
}

// IsLeaf reports whether the node is bound to a datapoint.
func (n *Node) IsLeaf() bool { return n.Datapoint != "" }

// MarshalJSON renders the snapshot as the nested mapping served to callers:
// leaves become their identifier string, internal nodes become objects.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(n.Datapoint)
	}
	return json.Marshal(n.Children)
}

// Build resolves the named view and recursively snapshots it.
func Build(ctx context.Context, provider plant.NamespaceProvider, view string) (*Node, error) {
	root, err := provider.ViewRoot(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("%w: view %q: %v", ErrUnavailable, view, err)
	}
	return buildNode(ctx, provider, root, 0)
}

func buildNode(ctx context.Context, provider plant.NamespaceProvider, id plant.NodeID, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: depth limit %d exceeded at node %q (cycle in source namespace?)", ErrUnavailable, maxDepth, id)
	}

	datapoint, err := provider.BoundDatapoint(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: node %q: %v", ErrUnavailable, id, err)
	}
	if datapoint != "" {
		return &Node{Datapoint: datapoint}, nil
	}

	childIDs, err := provider.Children(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: children of node %q: %v", ErrUnavailable, id, err)
	}
	children := make(map[string]*Node, len(childIDs))
	for _, childID := range childIDs {
		name, err := provider.DisplayName(ctx, childID)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %v", ErrUnavailable, childID, err)
		}
		child, err := buildNode(ctx, provider, childID, depth+1)
		if err != nil {
			return nil, err
		}
		children[name] = child
	}
	return &Node{Children: children}, nil
}
