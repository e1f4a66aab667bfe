package assistant

import (
	"context"
	"fmt"
	"sort"
)

// Param declares one tool parameter. Type is a semantic hint for the
// model and a validation constraint for the dispatcher.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// ToolSpec declares one tool: its unique name, what it does, and the
// flat argument set it accepts.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Tool is the interface every tool implements.
type Tool interface {
	Spec() ToolSpec
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// ToolRegistry maps tool names to implementations. It is populated at
// startup and read-only afterwards.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool, rejecting duplicate names.
func (r *ToolRegistry) Register(t Tool) error {
	name := t.Spec().Name
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	return nil
}

// Lookup resolves a tool by name.
func (r *ToolRegistry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// Specs returns all declarations in name order, so the rendered system
// prompt is stable across runs.
func (r *ToolRegistry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, t.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
