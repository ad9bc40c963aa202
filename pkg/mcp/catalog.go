// Package mcp is the tool façade: it maps external tool names and
// arguments onto the query engine and attaches the integrity envelope.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ToolRef describes one exposed tool: its name, agent-facing description
// and the JSON Schema its arguments must satisfy.
type ToolRef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"input_schema"`
}

// Validate checks that a ToolRef is registrable.
func (r ToolRef) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("tool ref name is required")
	}
	if r.Schema == "" {
		return fmt.Errorf("tool %s: input schema is required", r.Name)
	}
	return nil
}

// ToolCatalog stores tool definitions with compiled argument schemas.
type ToolCatalog struct {
	mu       sync.RWMutex
	tools    map[string]ToolRef
	compiled map[string]*jsonschema.Schema
}

func NewToolCatalog() *ToolCatalog {
	return &ToolCatalog{
		tools:    make(map[string]ToolRef),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register compiles the tool's argument schema and adds it to the catalog.
func (c *ToolCatalog) Register(ctx context.Context, ref ToolRef) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid tool ref: %w", err)
	}
	schema, err := jsonschema.CompileString(ref.Name+".schema.json", ref.Schema)
	if err != nil {
		return fmt.Errorf("tool %s: compile schema: %w", ref.Name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools[ref.Name] = ref
	c.compiled[ref.Name] = schema
	return nil
}

// Get returns a registered tool by name.
func (c *ToolCatalog) Get(name string) (ToolRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.tools[name]
	return ref, ok
}

// List returns all tools sorted by name.
func (c *ToolCatalog) List() []ToolRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ToolRef, 0, len(c.tools))
	for _, ref := range c.tools {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search finds tools whose name or description contains the query.
func (c *ToolCatalog) Search(ctx context.Context, query string) ([]ToolRef, error) {
	query = strings.ToLower(query)
	var results []ToolRef
	for _, tool := range c.List() {
		if strings.Contains(strings.ToLower(tool.Name), query) ||
			strings.Contains(strings.ToLower(tool.Description), query) {
			results = append(results, tool)
		}
	}
	return results, nil
}

// ValidateArgs checks tool arguments against the compiled schema.
func (c *ToolCatalog) ValidateArgs(name string, args map[string]any) error {
	c.mu.RLock()
	schema, ok := c.compiled[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("tool %s: marshal arguments: %w", name, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("tool %s: decode arguments: %w", name, err)
	}
	if generic == nil {
		generic = map[string]any{}
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}
	return nil
}
