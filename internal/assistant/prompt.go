package assistant

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are CodeAgent, a coding assistant that helps with programming tasks by reading and editing files in the current workspace.

You have access to the following tools:

%s

TOOL CALL PROTOCOL:
- To use a tool, emit a line of exactly this form, with nothing else on the line:
  tool: TOOL_NAME({JSON_ARGS})
- JSON_ARGS must be a single-line JSON object using double quotes.
- You may emit explanation text and one or more tool calls in the same reply; each tool call must be on its own line.
- After each tool call you will receive a message of the form tool_result: {JSON}. Use it to continue the task. Failed calls carry an "error" object; correct your arguments and retry.
- If no tool is needed, reply normally.

All file paths are relative to the workspace root. Never guess file contents; read them first.`

// BuildSystemPrompt renders the system prompt with the declarations of
// every registered tool, so the model knows what it may invoke.
func BuildSystemPrompt(specs []ToolSpec) string {
	var b strings.Builder
	for i, spec := range specs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderSpec(spec))
	}
	return fmt.Sprintf(systemPromptTemplate, b.String())
}

func renderSpec(spec ToolSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TOOL %s\n", spec.Name)
	fmt.Fprintf(&b, "  Description: %s\n", spec.Description)
	if len(spec.Params) == 0 {
		b.WriteString("  Arguments: none\n")
		return b.String()
	}
	b.WriteString("  Arguments:\n")
	for _, p := range spec.Params {
		requirement := "optional"
		if p.Required {
			requirement = "required"
		}
		fmt.Fprintf(&b, "    %s (%s, %s): %s\n", p.Name, p.Type, requirement, p.Description)
	}
	return b.String()
}
