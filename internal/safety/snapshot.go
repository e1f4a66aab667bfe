package safety

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SnapshotService backs up files before the agent edits them, so any
// edit can be undone. Each snapshot is a directory holding the copied
// files plus a manifest mapping them back to their original locations.
type SnapshotService struct {
	BackupDir string
}

type manifest struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Entries   []manifestEntry `json:"entries"`
}

type manifestEntry struct {
	Name   string `json:"name"`   // file name inside the snapshot dir
	Target string `json:"target"` // absolute path it was copied from
}

const manifestName = "manifest.json"

// NewSnapshotService creates the service, defaulting the backup
// location under the user's data dir.
func NewSnapshotService(backupDir string) (*SnapshotService, error) {
	if backupDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		backupDir = filepath.Join(home, ".local", "share", "codeAgent", "backups")
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, err
	}
	return &SnapshotService{BackupDir: backupDir}, nil
}

// Capture copies the given files into a new snapshot and returns its
// id. Files that do not exist yet are skipped; there is nothing to
// restore for them.
func (s *SnapshotService) Capture(files []string) (string, error) {
	// Nanosecond precision keeps lexical order equal to creation
	// order even for edits within the same second.
	id := time.Now().Format("20060102-150405.000000000") + "-" + uuid.NewString()[:8]
	snapshotDir := filepath.Join(s.BackupDir, id)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return "", err
	}

	m := manifest{ID: id, CreatedAt: time.Now()}
	for i, src := range files {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		name := fmt.Sprintf("%03d-%s", i, filepath.Base(src))
		if err := copyFile(src, filepath.Join(snapshotDir, name)); err != nil {
			return "", fmt.Errorf("failed to copy %s: %w", src, err)
		}
		m.Entries = append(m.Entries, manifestEntry{Name: name, Target: src})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(snapshotDir, manifestName), data, 0644); err != nil {
		return "", err
	}
	return id, nil
}

// Restore copies a snapshot's files back to where they came from and
// returns the restored paths.
func (s *SnapshotService) Restore(id string) ([]string, error) {
	m, err := s.readManifest(id)
	if err != nil {
		return nil, err
	}

	var restored []string
	for _, e := range m.Entries {
		src := filepath.Join(s.BackupDir, id, e.Name)
		if err := copyFile(src, e.Target); err != nil {
			return restored, fmt.Errorf("failed to restore %s: %w", e.Target, err)
		}
		restored = append(restored, e.Target)
	}
	return restored, nil
}

// Latest returns the id of the most recent snapshot. Snapshot ids
// start with a timestamp, so lexical order is creation order.
func (s *SnapshotService) Latest() (string, error) {
	entries, err := os.ReadDir(s.BackupDir)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no snapshots recorded")
	}
	sort.Strings(ids)
	return ids[len(ids)-1], nil
}

func (s *SnapshotService) readManifest(id string) (*manifest, error) {
	path := filepath.Join(s.BackupDir, id, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot %s not found", id)
		}
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot %s has a corrupt manifest: %w", id, err)
	}
	return &m, nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
