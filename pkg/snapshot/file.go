package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
)

const (
	filePrefix = "snapshot_"
	fileSuffix = ".json"

	// fileTimeFormat is fixed width so names sort lexically in time order.
	fileTimeFormat = "20060102T150405.000Z"
)

// FileName returns the export file name of s: the UTC creation time to the
// millisecond, then the first eight characters of the id.
func FileName(s *Snapshot) string {
	name := filePrefix + s.CreatedAt.UTC().Format(fileTimeFormat)
	if id := s.ID; id != "" {
		name += "_" + id[:min(len(id), 8)]
	}
	return name + fileSuffix
}

// WriteFile writes s as indented JSON into a new file in dir, creating dir if
// needed, and returns the file path.
func WriteFile(dir string, s *Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "create %s", dir)
	}
	path := filepath.Join(dir, FileName(s))
	// Existing snapshots are never overwritten.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "create %s", path)
	}

	if err := Write(f, s); err != nil {
		f.Close()
		return "", pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "close %s", path)
	}
	return path, nil
}

// Write encodes s as indented JSON to w.
func Write(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadFile decodes a snapshot file.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeSnapshotNotFound, err, "snapshot %s", path)
		}
		return nil, pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return &s, nil
}

// List returns the snapshot files in dir, oldest first. A missing directory
// holds no snapshots.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pgerrors.Wrap(pgerrors.ErrCodeSnapshotIO, err, "read %s", dir)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	slices.Sort(paths)
	return paths, nil
}

// Latest reads the most recent snapshot in dir.
func Latest(dir string) (*Snapshot, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, pgerrors.New(pgerrors.ErrCodeSnapshotNotFound, "no snapshots in %s", dir)
	}
	return ReadFile(paths[len(paths)-1])
}
