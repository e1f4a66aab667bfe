package assistant

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reinhart/codeAgent/internal/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultMap(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "tool result should be a map, got %T", v)
	return m
}

func toolKind(t *testing.T, err error) FailureKind {
	t.Helper()
	var te *ToolError
	require.ErrorAs(t, err, &te)
	return te.Kind
}

func TestWorkspaceResolveRejectsEscapes(t *testing.T) {
	ws := newTestWorkspace(t)

	_, err := ws.Resolve("../outside.txt")
	require.Error(t, err)
	assert.Equal(t, FailExecution, toolKind(t, err))

	_, err = ws.Resolve("/etc/passwd")
	require.Error(t, err)
}

func TestWorkspaceResolveAllowsNestedPaths(t *testing.T) {
	ws := newTestWorkspace(t)
	abs, err := ws.Resolve("sub/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root, "sub", "dir", "file.txt"), abs)
}

func TestReadFileTool(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "hello.txt"), []byte("hello world"), 0644))
	tool := &ReadFileTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{"path": "hello.txt"})
	require.NoError(t, err)
	m := resultMap(t, result)
	assert.Equal(t, "hello.txt", m["path"])
	assert.Equal(t, "hello world", m["content"])
}

func TestReadFileToolFailures(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.Mkdir(filepath.Join(ws.Root, "subdir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "binary.dat"), []byte{0xff, 0xfe, 0x00, 0x81}, 0644))
	tool := &ReadFileTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{"path": "absent.txt"})
	assert.Equal(t, FailNotFound, toolKind(t, err))

	_, err = tool.Execute(context.Background(), map[string]any{"path": "subdir"})
	assert.Equal(t, FailNotAFile, toolKind(t, err))

	_, err = tool.Execute(context.Background(), map[string]any{"path": "binary.dat"})
	assert.Equal(t, FailDecode, toolKind(t, err))
}

func TestReadFileToolIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "a.txt"), []byte("stable"), 0644))
	tool := &ReadFileTool{WS: ws}

	first, err := tool.Execute(context.Background(), map[string]any{"path": "a.txt"})
	require.NoError(t, err)
	second, err := tool.Execute(context.Background(), map[string]any{"path": "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListFilesTool(t *testing.T) {
	// Scenario C: ordered entries, directories visually distinguished.
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(ws.Root, "adir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "c.go"), []byte("c"), 0644))
	tool := &ListFilesTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{"path": "."})
	require.NoError(t, err)
	m := resultMap(t, result)
	assert.Equal(t, []string{"adir/", "b.txt", "c.go"}, m["entries"])
}

func TestListFilesToolDefaultsToRoot(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "only.txt"), []byte("x"), 0644))
	tool := &ListFilesTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	m := resultMap(t, result)
	assert.Equal(t, []string{"only.txt"}, m["entries"])
}

func TestListFilesToolIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "a.txt"), []byte("x"), 0644))
	tool := &ListFilesTool{WS: ws}

	first, err := tool.Execute(context.Background(), map[string]any{"path": "."})
	require.NoError(t, err)
	second, err := tool.Execute(context.Background(), map[string]any{"path": "."})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListFilesToolFailures(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "plain.txt"), []byte("x"), 0644))
	tool := &ListFilesTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{"path": "absent"})
	assert.Equal(t, FailNotFound, toolKind(t, err))

	_, err = tool.Execute(context.Background(), map[string]any{"path": "plain.txt"})
	assert.Equal(t, FailNotADirectory, toolKind(t, err))
}

func TestEditFileToolCreatesMissingFile(t *testing.T) {
	// Scenario B: empty old_str on a missing file creates it.
	ws := newTestWorkspace(t)
	tool := &EditFileTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{
		"path": "x.txt", "old_str": "", "new_str": "hello",
	})
	require.NoError(t, err)
	m := resultMap(t, result)
	assert.Equal(t, "created_file", m["action"])

	content, err := os.ReadFile(filepath.Join(ws.Root, "x.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestEditFileToolCreatesParentDirectories(t *testing.T) {
	ws := newTestWorkspace(t)
	tool := &EditFileTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{
		"path": "deep/nested/new.txt", "old_str": "", "new_str": "content",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(ws.Root, "deep", "nested", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

func TestEditFileToolReplacesFirstOccurrenceOnly(t *testing.T) {
	ws := newTestWorkspace(t)
	path := filepath.Join(ws.Root, "repeat.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo bar foo"), 0644))
	tool := &EditFileTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{
		"path": "repeat.txt", "old_str": "foo", "new_str": "baz",
	})
	require.NoError(t, err)
	m := resultMap(t, result)
	assert.Equal(t, "edited", m["action"])
	assert.NotEmpty(t, m["diff"])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "baz bar foo", string(content))
}

func TestEditFileToolAmbiguousOverwrite(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "busy.txt"), []byte("existing content"), 0644))
	tool := &EditFileTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{
		"path": "busy.txt", "old_str": "", "new_str": "replacement",
	})
	assert.Equal(t, FailAmbiguousEdit, toolKind(t, err))

	// The file is untouched.
	content, err := os.ReadFile(filepath.Join(ws.Root, "busy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "existing content", string(content))
}

func TestEditFileToolEmptyExistingFileIsWritable(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "empty.txt"), nil, 0644))
	tool := &EditFileTool{WS: ws}

	result, err := tool.Execute(context.Background(), map[string]any{
		"path": "empty.txt", "old_str": "", "new_str": "filled",
	})
	require.NoError(t, err)
	assert.Equal(t, "created_file", resultMap(t, result)["action"])
}

func TestEditFileToolOldStrNotFound(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "a.txt"), []byte("alpha"), 0644))
	tool := &EditFileTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{
		"path": "a.txt", "old_str": "omega", "new_str": "beta",
	})
	assert.Equal(t, FailOldStrNotFound, toolKind(t, err))
}

func TestEditFileToolMissingFileForReplacement(t *testing.T) {
	ws := newTestWorkspace(t)
	tool := &EditFileTool{WS: ws}

	_, err := tool.Execute(context.Background(), map[string]any{
		"path": "nope.txt", "old_str": "a", "new_str": "b",
	})
	assert.Equal(t, FailNotFound, toolKind(t, err))
}

func TestEditFileToolSnapshotsAndUndo(t *testing.T) {
	ws := newTestWorkspace(t)
	snapshots, err := safety.NewSnapshotService(t.TempDir())
	require.NoError(t, err)

	path := filepath.Join(ws.Root, "code.go")
	require.NoError(t, os.WriteFile(path, []byte("package old"), 0644))

	edit := &EditFileTool{WS: ws, Snapshot: snapshots}
	result, err := edit.Execute(context.Background(), map[string]any{
		"path": "code.go", "old_str": "old", "new_str": "new",
	})
	require.NoError(t, err)
	m := resultMap(t, result)
	require.NotEmpty(t, m["snapshot_id"])

	content, _ := os.ReadFile(path)
	assert.Equal(t, "package new", string(content))

	undo := &UndoEditTool{Snapshot: snapshots}
	undoResult, err := undo.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	um := resultMap(t, undoResult)
	assert.Equal(t, m["snapshot_id"], um["snapshot_id"])

	content, _ = os.ReadFile(path)
	assert.Equal(t, "package old", string(content))
}

func TestUndoEditToolNoSnapshots(t *testing.T) {
	snapshots, err := safety.NewSnapshotService(t.TempDir())
	require.NoError(t, err)
	undo := &UndoEditTool{Snapshot: snapshots}

	_, err = undo.Execute(context.Background(), map[string]any{})
	assert.Equal(t, FailNotFound, toolKind(t, err))
}

func TestUndoEditToolWithoutSnapshotService(t *testing.T) {
	undo := &UndoEditTool{}

	_, err := undo.Execute(context.Background(), map[string]any{})
	assert.Equal(t, FailExecution, toolKind(t, err))
}
