package index

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

func readSnapshot(path string) (map[string]string, error) {
	if path == "" {
		return nil, &LoadError{Path: path, Err: errors.New("no snapshot path configured")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if entries == nil {
		return nil, &LoadError{Path: path, Err: errors.New("snapshot is not an object")}
	}
	return entries, nil
}

// writeSnapshot replaces the snapshot through a temp file in the same
// directory so readers never see a truncated file.
func writeSnapshot(path string, entries map[string]string) error {
	if path == "" {
		return errors.New("no snapshot path configured")
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
