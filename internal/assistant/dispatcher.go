package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reinhart/codeAgent/internal/logger"
)

// FailureDesc describes why a tool call failed, in a form the model
// can act on.
type FailureDesc struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ToolOutcome is the result of executing one invocation. Exactly one
// of Result and Failure is set.
type ToolOutcome struct {
	Tool    string       `json:"tool"`
	OK      bool         `json:"ok"`
	Result  any          `json:"result,omitempty"`
	Failure *FailureDesc `json:"error,omitempty"`
}

// RenderTurn serializes the outcome into the tool_result wire format
// the model was instructed to expect.
func (o ToolOutcome) RenderTurn() string {
	data, err := json.Marshal(o)
	if err != nil {
		// Result payloads are maps of strings produced by our own
		// tools; marshal failure means a tool returned something
		// unserializable.
		data, _ = json.Marshal(ToolOutcome{
			Tool:    o.Tool,
			Failure: &FailureDesc{Kind: FailExecution, Message: "unserializable tool result"},
		})
	}
	return "tool_result: " + string(data)
}

func failure(tool string, kind FailureKind, format string, args ...interface{}) ToolOutcome {
	return ToolOutcome{
		Tool:    tool,
		Failure: &FailureDesc{Kind: kind, Message: fmt.Sprintf(format, args...)},
	}
}

// Dispatcher resolves invocations against the registry, validates
// arguments, and runs handlers. Every failure becomes an outcome; a
// tool fault never crashes the loop.
type Dispatcher struct {
	registry *ToolRegistry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(r *ToolRegistry) *Dispatcher {
	return &Dispatcher{registry: r}
}

// Execute runs one invocation to completion. A tool's internal fault,
// panics included, never escapes the dispatcher; the conversation
// continues with a failure outcome.
func (d *Dispatcher) Execute(ctx context.Context, inv *ToolInvocation) (out ToolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool %s panicked: %v", inv.Name, r)
			out = failure(inv.Name, FailExecution, "tool %s panicked: %v", inv.Name, r)
		}
	}()

	if inv.Err != nil {
		logger.Info("Rejected directive: %v", inv.Err)
		return failure(inv.Name, FailParse, "%v", inv.Err)
	}

	tool, err := d.registry.Lookup(inv.Name)
	if err != nil {
		logger.Info("Unknown tool requested: %s", inv.Name)
		return failure(inv.Name, FailUnknownTool, "no tool named %q is available", inv.Name)
	}

	spec := tool.Spec()
	if out, ok := validateArgs(spec, inv.Args); !ok {
		return out
	}

	logger.Debug("Executing %s(%v)", inv.Name, inv.Args)
	result, err := tool.Execute(ctx, inv.Args)
	if err != nil {
		logger.Info("Tool %s failed: %v", inv.Name, err)
		var te *ToolError
		if errors.As(err, &te) {
			return failure(inv.Name, te.Kind, "%s", te.Message)
		}
		return failure(inv.Name, FailExecution, "%v", err)
	}
	return ToolOutcome{Tool: inv.Name, OK: true, Result: result}
}

// validateArgs checks supplied arguments against the declared schema.
// Missing required parameters and unknown parameters are both
// rejected; the strict policy keeps the model honest about schemas.
func validateArgs(spec ToolSpec, args map[string]any) (ToolOutcome, bool) {
	declared := make(map[string]Param, len(spec.Params))
	for _, p := range spec.Params {
		declared[p.Name] = p
	}

	for _, p := range spec.Params {
		if !p.Required {
			continue
		}
		if _, present := args[p.Name]; !present {
			return failure(spec.Name, FailMissingArgument,
				"%s requires argument %q", spec.Name, p.Name), false
		}
	}

	for name, value := range args {
		p, ok := declared[name]
		if !ok {
			return failure(spec.Name, FailUnexpectedArgument,
				"%s does not accept argument %q", spec.Name, name), false
		}
		if p.Type == "string" {
			if _, ok := value.(string); !ok {
				return failure(spec.Name, FailUnexpectedArgument,
					"argument %q of %s must be a string, got %T", name, spec.Name, value), false
			}
		}
	}
	return ToolOutcome{}, true
}
