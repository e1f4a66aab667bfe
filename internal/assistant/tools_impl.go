package assistant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/reinhart/codeAgent/internal/safety"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Workspace confines tool filesystem access to a single root
// directory. Every tool path is interpreted relative to it.
type Workspace struct {
	Root string
}

// NewWorkspace resolves and validates the root directory.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &Workspace{Root: abs}, nil
}

// Resolve turns a tool-supplied path into an absolute path, rejecting
// anything that escapes the root.
func (w *Workspace) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", Toolf(FailExecution, "absolute paths are not allowed: %s", rel)
	}
	abs := filepath.Clean(filepath.Join(w.Root, rel))
	inside, err := filepath.Rel(w.Root, abs)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", Toolf(FailExecution, "path %s escapes the workspace root", rel)
	}
	return abs, nil
}

// Dispatcher-level validation guarantees presence and string type for
// declared arguments, so tools read them without re-checking.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

// --- read_file ---

type ReadFileTool struct {
	WS *Workspace
}

func (t *ReadFileTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "read_file",
		Description: "Reads the full text content of a file in the workspace",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Path of the file, relative to the workspace root", Required: true},
		},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	rel := stringArg(args, "path", "")
	abs, err := t.WS.Resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, Toolf(FailNotFound, "file %s does not exist", rel)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, Toolf(FailNotAFile, "%s is a directory, not a file", rel)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if !utf8.Valid(content) {
		return nil, Toolf(FailDecode, "%s is not valid UTF-8 text", rel)
	}

	return map[string]any{
		"path":    rel,
		"content": string(content),
	}, nil
}

// --- list_files ---

type ListFilesTool struct {
	WS *Workspace
}

func (t *ListFilesTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "list_files",
		Description: "Lists the entries of a workspace directory; directory names carry a trailing slash",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Directory to list, relative to the workspace root (defaults to the root)", Required: false},
		},
	}
}

func (t *ListFilesTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	rel := stringArg(args, "path", ".")
	abs, err := t.WS.Resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, Toolf(FailNotFound, "directory %s does not exist", rel)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, Toolf(FailNotADirectory, "%s is not a directory", rel)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rel, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	return map[string]any{
		"path":    rel,
		"entries": names,
	}, nil
}

// --- edit_file ---

type EditFileTool struct {
	WS       *Workspace
	Snapshot *safety.SnapshotService
}

func (t *EditFileTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "edit_file",
		Description: "Replaces the first occurrence of old_str with new_str; with an empty old_str, creates the file with new_str as content",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Path of the file to edit, relative to the workspace root", Required: true},
			{Name: "old_str", Type: "string", Description: "Exact text to replace; empty string to create a new file", Required: true},
			{Name: "new_str", Type: "string", Description: "Replacement text, or the full content of a new file", Required: true},
		},
	}
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	rel := stringArg(args, "path", "")
	oldStr := stringArg(args, "old_str", "")
	newStr := stringArg(args, "new_str", "")

	abs, err := t.WS.Resolve(rel)
	if err != nil {
		return nil, err
	}

	info, statErr := os.Stat(abs)
	exists := statErr == nil
	if exists && info.IsDir() {
		return nil, Toolf(FailNotAFile, "%s is a directory, not a file", rel)
	}

	if oldStr == "" {
		// Creating a file over existing non-empty content would be an
		// ambiguous destructive overwrite; refuse it.
		if exists && info.Size() > 0 {
			return nil, Toolf(FailAmbiguousEdit,
				"%s already exists and is not empty; pass the text to replace as old_str", rel)
		}
		return t.writeFile(abs, rel, "", newStr, "created_file", exists)
	}

	if !exists {
		return nil, Toolf(FailNotFound, "file %s does not exist", rel)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	original := string(raw)

	if !strings.Contains(original, oldStr) {
		return nil, Toolf(FailOldStrNotFound, "old_str not found in %s", rel)
	}
	edited := strings.Replace(original, oldStr, newStr, 1)
	return t.writeFile(abs, rel, original, edited, "edited", true)
}

func (t *EditFileTool) writeFile(abs, rel, before, after, action string, snapshot bool) (any, error) {
	result := map[string]any{
		"path":   rel,
		"action": action,
	}

	if snapshot && t.Snapshot != nil {
		id, err := t.Snapshot.Capture([]string{abs})
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s before editing: %w", rel, err)
		}
		result["snapshot_id"] = id
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(after), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	patch := dmp.PatchToText(dmp.PatchMake(before, diffs))
	if strings.TrimSpace(patch) != "" {
		result["diff"] = patch
	}
	return result, nil
}

// --- undo_edit ---

type UndoEditTool struct {
	Snapshot *safety.SnapshotService
}

func (t *UndoEditTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "undo_edit",
		Description: "Restores files from a snapshot taken before an edit; without a snapshot_id, restores the most recent one",
		Params: []Param{
			{Name: "snapshot_id", Type: "string", Description: "Snapshot to restore; empty for the latest", Required: false},
		},
	}
}

func (t *UndoEditTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	if t.Snapshot == nil {
		return nil, Toolf(FailExecution, "snapshot service is unavailable; nothing to restore")
	}

	id := stringArg(args, "snapshot_id", "")
	if id == "" {
		latest, err := t.Snapshot.Latest()
		if err != nil {
			return nil, Toolf(FailNotFound, "%v", err)
		}
		id = latest
	}

	restored, err := t.Snapshot.Restore(id)
	if err != nil {
		return nil, Toolf(FailNotFound, "%v", err)
	}
	return map[string]any{
		"snapshot_id": id,
		"restored":    restored,
	}, nil
}
