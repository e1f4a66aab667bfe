package assistant

import (
	"errors"
	"fmt"
)

// Registry errors. These are programmer/setup errors, unlike tool
// failures which travel back to the model as outcomes.
var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrUnknownTool   = errors.New("unknown tool")
)

// FailureKind classifies a failed tool outcome so the model can react
// to the category, not just the message.
type FailureKind string

const (
	FailParse              FailureKind = "parse_error"
	FailUnknownTool        FailureKind = "unknown_tool"
	FailMissingArgument    FailureKind = "missing_argument"
	FailUnexpectedArgument FailureKind = "unexpected_argument"
	FailNotFound           FailureKind = "not_found"
	FailNotAFile           FailureKind = "not_a_file"
	FailNotADirectory      FailureKind = "not_a_directory"
	FailDecode             FailureKind = "decode_error"
	FailOldStrNotFound     FailureKind = "old_str_not_found"
	FailAmbiguousEdit      FailureKind = "ambiguous_edit"
	FailExecution          FailureKind = "execution_error"
)

// ToolError is a classified handler failure. Handlers return it when
// they can name the failure category; anything else is wrapped as
// FailExecution by the dispatcher.
type ToolError struct {
	Kind    FailureKind
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Toolf builds a classified tool error.
func Toolf(kind FailureKind, format string, args ...interface{}) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ParseError describes a tool-call directive that could not be decoded.
// It is never surfaced to the user directly; the loop converts it into
// a failed outcome so the model can retry with corrected syntax.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed tool directive %q: %s", e.Line, e.Reason)
}
