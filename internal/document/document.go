// Package document implements merging, page deletion and page rotation on
// top of a PDF Engine. Every operation writes a new file and leaves its
// inputs untouched.
package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdfeditor/internal/pages"
)

var (
	// ErrCollision means the output name already exists.
	ErrCollision = errors.New("output file already exists")
	// ErrEmptyName means no output name was given.
	ErrEmptyName = errors.New("output name is empty")
	// ErrPageOutOfRange means a selected page is not in the document.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrNoPagesLeft means a deletion would remove every page.
	ErrNoPagesLeft = errors.New("cannot delete every page of a document")
)

// WriteError reports a failed write. The target name was not created.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Operations runs document operations through an Engine.
type Operations struct {
	engine Engine
	logger *slog.Logger
}

// New returns Operations backed by engine. A nil logger discards output.
func New(engine Engine, logger *slog.Logger) *Operations {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Operations{engine: engine, logger: logger}
}

// PageCount opens path just long enough to count its pages.
func (o *Operations) PageCount(path string) (int, error) {
	return o.engine.PageCount(path)
}

// Target turns a user supplied name into an output path. Relative names are
// placed in dir and ".pdf" is appended when missing.
func Target(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	if _, err := os.Lstat(name); err == nil {
		return name, ErrCollision
	} else if !errors.Is(err, os.ErrNotExist) {
		return name, err
	}
	return name, nil
}

// Merge appends the pages of every path, in order, into target. Fewer than
// two distinct inputs is a no-op that returns "" and no error.
func (o *Operations) Merge(paths []string, target string) (string, error) {
	if countDistinct(paths) < 2 {
		o.logger.Info("Merge skipped", "inputs", len(paths))
		return "", nil
	}
	err := o.write(target, func(tmp string) error {
		return o.engine.Merge(paths, tmp)
	})
	if err != nil {
		return "", err
	}
	o.logger.Info("Merged documents", "inputs", len(paths), "output", target)
	return target, nil
}

// DeletePages copies every page of path not in sel, in order, into target.
// An empty selection is a no-op.
func (o *Operations) DeletePages(path string, sel pages.Selection, target string) (string, error) {
	if len(sel.Indices) == 0 {
		return "", nil
	}
	total, err := o.engine.PageCount(path)
	if err != nil {
		return "", err
	}
	for _, idx := range sel.Indices {
		if idx < 0 || idx >= total {
			return "", fmt.Errorf("page %d of %d: %w", idx+1, total, ErrPageOutOfRange)
		}
	}
	if len(sel.Indices) >= total {
		return "", ErrNoPagesLeft
	}

	err = o.write(target, func(tmp string) error {
		return o.engine.RemovePages(path, sel.Indices, tmp)
	})
	if err != nil {
		return "", err
	}
	o.logger.Info("Deleted pages", "input", path, "pages", sel.String(), "output", target)
	return target, nil
}

// RotatePages rotates the pages named in turns clockwise by turns*90 degrees
// and copies the rest unchanged. A plan without any non-zero turn is a no-op.
func (o *Operations) RotatePages(path string, turns map[int]int, target string) (string, error) {
	changed := false
	for _, t := range turns {
		if t < 0 || t > pages.MaxTurns {
			return "", fmt.Errorf("turns must be between 0 and %d, got %d", pages.MaxTurns, t)
		}
		if t != 0 {
			changed = true
		}
	}
	if !changed {
		return "", nil
	}
	total, err := o.engine.PageCount(path)
	if err != nil {
		return "", err
	}
	for idx := range turns {
		if idx < 0 || idx >= total {
			return "", fmt.Errorf("page %d of %d: %w", idx+1, total, ErrPageOutOfRange)
		}
	}

	err = o.write(target, func(tmp string) error {
		return o.engine.Rotate(path, turns, tmp)
	})
	if err != nil {
		return "", err
	}
	o.logger.Info("Rotated pages", "input", path, "pages", len(turns), "output", target)
	return target, nil
}

// linkFile is swapped in tests to mimic filesystems without hard links.
var linkFile = os.Link

// write lets produce fill a temp file next to target and then links it into
// place. The link fails instead of replacing a file that appeared meanwhile;
// where links are unsupported the target is checked again and the temp file
// renamed. The temp file never outlives the call.
func (o *Operations) write(target string, produce func(tmp string) error) error {
	if _, err := os.Lstat(target); err == nil {
		return &WriteError{Target: target, Err: ErrCollision}
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return &WriteError{Target: target, Err: err}
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if err := produce(tmpName); err != nil {
		o.logger.Error("Write failed", "target", target, "error", err)
		return &WriteError{Target: target, Err: err}
	}
	// CreateTemp makes the file owner-only; outputs get ordinary permissions.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &WriteError{Target: target, Err: err}
	}
	if err := linkFile(tmpName, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return &WriteError{Target: target, Err: ErrCollision}
		}
		// FAT, exFAT and many network shares have no hard links.
		if _, statErr := os.Lstat(target); statErr == nil {
			return &WriteError{Target: target, Err: ErrCollision}
		}
		o.logger.Warn("Hard link failed, renaming instead", "target", target, "error", err)
		if err := os.Rename(tmpName, target); err != nil {
			return &WriteError{Target: target, Err: err}
		}
	}
	return nil
}

func countDistinct(paths []string) int {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		seen[filepath.Clean(p)] = struct{}{}
	}
	return len(seen)
}
