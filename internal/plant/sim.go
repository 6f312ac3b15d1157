package plant

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// SimNode declares one node of a simulated namespace tree. A node with a
// non-empty Datapoint is a leaf bound to that identifier; otherwise it is an
// internal node grouping its children.
type SimNode struct {
	Name      string
	Datapoint string
	Children  []*SimNode
}

// SimPlant is an in-memory control system implementing NamespaceProvider
// and Driver. It stands in when no live endpoint is configured and carries
// the full namespace and datapoint semantics the gateway expects, so the
// whole stack can run and be tested against it.
type SimPlant struct {
	mu       sync.RWMutex
	views    map[string]NodeID
	nodes    map[NodeID]*SimNode
	children map[NodeID][]NodeID
	values   map[string]any
	nextID   int
}

// NewSimPlant creates a simulator over the given views. Every leaf's
// datapoint starts with a nil value until written or seeded via SetValue.
func NewSimPlant(views map[string]*SimNode) *SimPlant {
	p := &SimPlant{
		views:    make(map[string]NodeID, len(views)),
		nodes:    make(map[NodeID]*SimNode),
		children: make(map[NodeID][]NodeID),
		values:   make(map[string]any),
	}
	for name, root := range views {
		p.views[name] = p.register(root)
	}
	return p
}

func (p *SimPlant) register(node *SimNode) NodeID {
	id := NodeID(fmt.Sprintf("ns=1;i=%d", p.nextID))
	p.nextID++
	p.nodes[id] = node
	if node.Datapoint != "" {
		p.values[node.Datapoint] = nil
	}
	for _, child := range node.Children {
		p.children[id] = append(p.children[id], p.register(child))
	}
	return id
}

// DefaultSimPlant builds a small demonstration plant: a boiler with an AI
// scratch datapoint, a safety interlock, and a demo line.
func DefaultSimPlant() *SimPlant {
	p := NewSimPlant(map[string]*SimNode{
		"PlantOverview": {
			Name: "Plant",
			Children: []*SimNode{
				{
					Name: "Boiler1",
					Children: []*SimNode{
						{Name: "Temperature", Datapoint: "Boiler1_Temperature"},
						{Name: "Pressure", Datapoint: "Boiler1_Pressure"},
						{Name: "AI Assistant", Datapoint: "Boiler1_AI_Assistant"},
						{Name: "Safety ESD", Datapoint: "Boiler1_Safety_ESD"},
					},
				},
				{
					Name: "Line2",
					Children: []*SimNode{
						{Name: "Demo Valve", Datapoint: "Line2_DEMO_Valve"},
						{Name: "Speed", Datapoint: "Line2_Speed"},
					},
				},
			},
		},
	})
	p.SetValue("Boiler1_Temperature", 94.2)
	p.SetValue("Boiler1_Pressure", 3.1)
	p.SetValue("Line2_Speed", 1250)
	return p
}

// SetValue seeds a datapoint value directly, bypassing authorization.
func (p *SimPlant) SetValue(name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = value
}

func (p *SimPlant) ListViews(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.views))
	for name := range p.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *SimPlant) ViewRoot(_ context.Context, view string) (NodeID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.views[view]
	if !ok {
		return "", fmt.Errorf("view %q not found", view)
	}
	return id, nil
}

func (p *SimPlant) DisplayName(_ context.Context, id NodeID) (string, error) {
	node, err := p.node(id)
	if err != nil {
		return "", err
	}
	return node.Name, nil
}

func (p *SimPlant) BoundDatapoint(_ context.Context, id NodeID) (string, error) {
	node, err := p.node(id)
	if err != nil {
		return "", err
	}
	return node.Datapoint, nil
}

func (p *SimPlant) Children(_ context.Context, id NodeID) ([]NodeID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.nodes[id]; !ok {
		return nil, fmt.Errorf("node %q not found", id)
	}
	// Declaration order, as registered.
	ids := make([]NodeID, len(p.children[id]))
	copy(ids, p.children[id])
	return ids, nil
}

func (p *SimPlant) node(id NodeID) (*SimNode, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	node, ok := p.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %q not found", id)
	}
	return node, nil
}

func (p *SimPlant) ReadDatapoint(_ context.Context, name string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.values[name]
	if !ok {
		return nil, fmt.Errorf("datapoint %q not found", name)
	}
	return value, nil
}

func (p *SimPlant) WriteDatapoint(_ context.Context, name string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.values[name]; !ok {
		return fmt.Errorf("datapoint %q not found", name)
	}
	p.values[name] = value
	return nil
}
