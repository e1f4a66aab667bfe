package assistant

import (
	"encoding/json"
	"strings"
)

// directivePrefix marks a tool-call line in assistant output. The
// model is instructed (see prompt.go) to emit exactly
//
//	tool: NAME({"arg": "value"})
//
// on a line of its own, so extraction is a line scan rather than a
// full grammar parse. Free text and directives may be interleaved in
// one turn.
const directivePrefix = "tool:"

// ToolInvocation is one parsed directive. Err is set when the
// directive line was recognized but could not be decoded; such
// invocations still flow to the dispatcher so the failure is fed back
// to the model instead of aborting the turn.
type ToolInvocation struct {
	Name string
	Args map[string]any
	Err  error
}

// Segment is one slice of an assistant turn: either plain text or a
// directive, in emission order.
type Segment struct {
	Text       string
	Invocation *ToolInvocation
}

// ParseTurn splits one assistant turn into ordered segments. A turn
// with no directives yields only text segments (possibly none, for an
// empty turn).
func ParseTurn(text string) []Segment {
	var segments []Segment
	var plain []string

	flush := func() {
		if len(plain) > 0 {
			segments = append(segments, Segment{Text: strings.Join(plain, "\n")})
			plain = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, directivePrefix) {
			plain = append(plain, raw)
			continue
		}
		flush()
		segments = append(segments, Segment{Invocation: parseDirective(line)})
	}
	flush()
	return segments
}

// parseDirective decodes a single `tool: name({json})` line.
func parseDirective(line string) *ToolInvocation {
	body := strings.TrimSpace(strings.TrimPrefix(line, directivePrefix))

	open := strings.Index(body, "(")
	if open < 0 {
		return &ToolInvocation{Err: &ParseError{Line: line, Reason: "missing argument list"}}
	}
	name := strings.TrimSpace(body[:open])
	if name == "" {
		return &ToolInvocation{Err: &ParseError{Line: line, Reason: "missing tool name"}}
	}

	rest := strings.TrimSpace(body[open+1:])
	if !strings.HasSuffix(rest, ")") {
		return &ToolInvocation{Name: name, Err: &ParseError{Line: line, Reason: "unterminated argument list"}}
	}
	payload := strings.TrimSpace(strings.TrimSuffix(rest, ")"))
	if payload == "" {
		payload = "{}"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return &ToolInvocation{Name: name, Err: &ParseError{Line: line, Reason: "arguments are not a JSON object"}}
	}
	return &ToolInvocation{Name: name, Args: args}
}

// Invocations filters the directive segments, preserving order.
func Invocations(segments []Segment) []*ToolInvocation {
	var invs []*ToolInvocation
	for _, s := range segments {
		if s.Invocation != nil {
			invs = append(invs, s.Invocation)
		}
	}
	return invs
}

// ResidualText joins the non-directive segments; this is the
// user-visible portion of the turn.
func ResidualText(segments []Segment) string {
	var parts []string
	for _, s := range segments {
		if s.Invocation == nil {
			parts = append(parts, s.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
