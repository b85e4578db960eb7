// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Load reads the store at path. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := New()
	ok, err := readJSON(path, s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}
	if s.Posts == nil {
		s.Posts = map[string]types.Record{}
	}
	return s, nil
}

// LoadState reads the run state at path. A missing file is the zero state.
func LoadState(path string) (types.RunState, error) {
	var st types.RunState
	if _, err := readJSON(path, &st); err != nil {
		return types.RunState{}, err
	}
	return st, nil
}

// Save writes the store to path through a temporary file.
func Save(path string, s *Store) error {
	return Commit(path, s, "", types.RunState{})
}

// Commit persists the store and the run state together. Both documents are
// fully written to temporary files before either is renamed into place, so
// an encoding or write failure leaves both files untouched. The run state
// is renamed first and restored if the store rename then fails; a crash
// between the two renames loses the cycle's merge but never applies it
// twice. An empty statePath writes only the store.
func Commit(storePath string, s *Store, statePath string, st types.RunState) error {
	storeTmp, err := writeTemp(storePath, s)
	if err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if statePath == "" {
		if err := os.Rename(storeTmp, storePath); err != nil {
			os.Remove(storeTmp)
			return fmt.Errorf("renaming store: %w", err)
		}
		return nil
	}

	stateTmp, err := writeTemp(statePath, st)
	if err != nil {
		os.Remove(storeTmp)
		return fmt.Errorf("writing run state: %w", err)
	}
	prevState, hadState, err := readRaw(statePath)
	if err != nil {
		os.Remove(storeTmp)
		os.Remove(stateTmp)
		return fmt.Errorf("reading run state: %w", err)
	}

	if err := os.Rename(stateTmp, statePath); err != nil {
		os.Remove(storeTmp)
		os.Remove(stateTmp)
		return fmt.Errorf("renaming run state: %w", err)
	}
	if err := os.Rename(storeTmp, storePath); err != nil {
		os.Remove(storeTmp)
		if rerr := restore(statePath, prevState, hadState); rerr != nil {
			return fmt.Errorf("renaming store: %w (restoring run state: %v)", err, rerr)
		}
		return fmt.Errorf("renaming store: %w", err)
	}
	return nil
}

// readRaw returns the bytes at path and whether the file existed.
func readRaw(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// restore puts back the previous contents of path, or removes it when it
// did not exist before.
func restore(path string, prev []byte, existed bool) error {
	if !existed {
		return os.Remove(path)
	}
	tmp, err := writeTempBytes(path, prev)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// readJSON decodes path into v. It reports false when the file does not
// exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, fmt.Errorf("%w: %s is empty", ErrCorrupt, path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return true, nil
}

// writeTemp encodes v next to path and returns the temporary file name.
func writeTemp(path string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeTempBytes(path, buf.Bytes())
}

// writeTempBytes writes data next to path and returns the temporary file
// name.
func writeTempBytes(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	return tmpPath, nil
}
