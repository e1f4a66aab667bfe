package assistant

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directive(name string, args map[string]any) string {
	payload, _ := json.Marshal(args)
	return fmt.Sprintf("tool: %s(%s)", name, payload)
}

func TestParseTurnNoDirectives(t *testing.T) {
	segments := ParseTurn("Here is the plan:\n1. read the file\n2. edit it")
	assert.Empty(t, Invocations(segments))
	assert.Equal(t, "Here is the plan:\n1. read the file\n2. edit it", ResidualText(segments))
}

func TestParseTurnEmpty(t *testing.T) {
	segments := ParseTurn("")
	assert.Empty(t, Invocations(segments))
	assert.Equal(t, "", ResidualText(segments))
}

func TestParseTurnRoundTrip(t *testing.T) {
	args := map[string]any{"path": "main.go", "old_str": "foo", "new_str": "bar"}
	segments := ParseTurn(directive("edit_file", args))

	invs := Invocations(segments)
	require.Len(t, invs, 1)
	require.NoError(t, invs[0].Err)
	assert.Equal(t, "edit_file", invs[0].Name)
	assert.Equal(t, args, invs[0].Args)
}

func TestParseTurnMixedTextAndDirectives(t *testing.T) {
	text := "Let me look at that file.\n" +
		directive("read_file", map[string]any{"path": "a.txt"}) + "\n" +
		"And the directory too.\n" +
		directive("list_files", map[string]any{"path": "."}) + "\n" +
		"Back shortly."

	segments := ParseTurn(text)
	invs := Invocations(segments)
	require.Len(t, invs, 2)
	assert.Equal(t, "read_file", invs[0].Name)
	assert.Equal(t, "list_files", invs[1].Name)

	residual := ResidualText(segments)
	assert.Contains(t, residual, "Let me look at that file.")
	assert.Contains(t, residual, "And the directory too.")
	assert.Contains(t, residual, "Back shortly.")
	assert.NotContains(t, residual, "tool:")
}

func TestParseTurnPreservesDirectiveOrder(t *testing.T) {
	var text string
	for i := 0; i < 5; i++ {
		text += directive(fmt.Sprintf("tool_%d", i), map[string]any{}) + "\n"
	}
	invs := Invocations(ParseTurn(text))
	require.Len(t, invs, 5)
	for i, inv := range invs {
		assert.Equal(t, fmt.Sprintf("tool_%d", i), inv.Name)
	}
}

func TestParseTurnEmptyArgs(t *testing.T) {
	invs := Invocations(ParseTurn("tool: list_files()"))
	require.Len(t, invs, 1)
	require.NoError(t, invs[0].Err)
	assert.Equal(t, "list_files", invs[0].Name)
	assert.Empty(t, invs[0].Args)
}

func TestParseTurnIndentedDirective(t *testing.T) {
	invs := Invocations(ParseTurn("  tool: read_file({\"path\": \"x\"})  "))
	require.Len(t, invs, 1)
	require.NoError(t, invs[0].Err)
}

func TestParseTurnMalformedDirectives(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"no argument list", "tool: read_file"},
		{"no name", `tool: ({"path": "x"})`},
		{"unterminated", `tool: read_file({"path": "x"}`},
		{"bad json", "tool: read_file({path: x})"},
		{"non-object args", `tool: read_file(["x"])`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invs := Invocations(ParseTurn(tc.line))
			require.Len(t, invs, 1)
			require.Error(t, invs[0].Err)
			var pe *ParseError
			assert.ErrorAs(t, invs[0].Err, &pe)
		})
	}
}

func TestParseTurnMalformedDoesNotAbortOthers(t *testing.T) {
	text := "tool: broken(\n" + directive("read_file", map[string]any{"path": "a"})
	invs := Invocations(ParseTurn(text))
	require.Len(t, invs, 2)
	assert.Error(t, invs[0].Err)
	assert.NoError(t, invs[1].Err)
	assert.Equal(t, "read_file", invs[1].Name)
}
