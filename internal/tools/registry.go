// Package tools defines the gateway's AI-facing tool surface: the tool
// registry with argument schemas, and the service that executes calls
// against the plant after gating writes through the effective policy.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Registered tool names.
const (
	ToolReadDatapoint   = "read_datapoint"
	ToolWriteDatapoint  = "write_datapoint"
	ToolBrowsePlant     = "browse_plant"
	ToolListViews       = "list_views"
	ToolGetInstructions = "get_instructions"
	ToolGetWritePolicy  = "get_write_policy"
)

// Definition describes one exposed tool: its name, a description for the
// model, and the JSON Schema its arguments must satisfy.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`

	schema *jsonschema.Schema
}

// ValidateArguments checks raw call arguments against the tool's schema.
// Missing arguments are treated as an empty object.
func (d *Definition) ValidateArguments(raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return d.schema.Validate(instance)
}

// Registry holds the tool definitions, in registration order.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// List returns the definitions in registration order.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

const emptyObjectSchema = `{"type":"object","additionalProperties":false}`

const datapointNameSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1}
	},
	"required": ["name"],
	"additionalProperties": false
}`

const writeDatapointSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"value": {"type": ["number", "string", "boolean", "integer"]}
	},
	"required": ["name", "value"],
	"additionalProperties": false
}`

// DefaultRegistry builds the registry of all gateway tools.
// Schema compilation failures are programmer errors and panic.
func DefaultRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Definition)}
	for _, def := range []struct {
		name, description, schema string
	}{
		{ToolReadDatapoint,
			"Read the current value of a datapoint by its identifier.",
			datapointNameSchema},
		{ToolWriteDatapoint,
			"Write a value to a datapoint. Only datapoints matching the allowed write patterns can be written; call get_write_policy to see them.",
			writeDatapointSchema},
		{ToolBrowsePlant,
			"Return the plant's namespace tree. Leaves are datapoint identifiers usable with read_datapoint and write_datapoint.",
			emptyObjectSchema},
		{ToolListViews,
			"List the available namespace views of the plant.",
			emptyObjectSchema},
		{ToolGetInstructions,
			"Return the operator instruction documents governing this plant.",
			emptyObjectSchema},
		{ToolGetWritePolicy,
			"Return the list of datapoint patterns permitted for writes.",
			emptyObjectSchema},
	} {
		r.register(&Definition{
			Name:        def.name,
			Description: def.description,
			InputSchema: json.RawMessage(def.schema),
			schema:      mustCompileSchema(def.name, def.schema),
		})
	}
	return r
}

func (r *Registry) register(def *Definition) {
	r.defs = append(r.defs, def)
	r.byName[def.Name] = def
}

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schema)))
	if err != nil {
		panic(fmt.Sprintf("tool %s: invalid schema JSON: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	url := name + ".schema.json"
	if err := compiler.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("tool %s: add schema resource: %v", name, err))
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("tool %s: compile schema: %v", name, err))
	}
	return compiled
}
