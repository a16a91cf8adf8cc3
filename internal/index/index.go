// Package index keeps the session's map from PDF file names to absolute
// paths, backed by a JSON snapshot and rebuilt by walking every volume.
package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Suffix is the case-sensitive extension every indexed name ends with.
const Suffix = ".pdf"

// SnapshotName is the default file name of the persisted snapshot.
const SnapshotName = "pdf_cache.json"

// LoadError wraps any failure to read or decode the snapshot.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load index snapshot %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistError reports that a rebuild completed in memory but could not be
// written back. The caller should stop the flow that needed the rebuild.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save index snapshot %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Entry is one name to path mapping.
type Entry struct {
	Name string
	Path string
}

// Progress is reported once before and once after each volume is walked.
type Progress struct {
	Volume string
	Done   int // volumes finished
	Total  int
	Found  int // files found so far across all volumes
}

// Options configures an Index.
type Options struct {
	SnapshotPath string
	Volumes      Volumes
	// Exclude lists directories that are never descended into.
	Exclude []string
	Logger  *slog.Logger
}

// Index maps PDF base names to absolute paths. It is owned by one session
// and is not safe for concurrent use.
type Index struct {
	snapshot string
	volumes  Volumes
	exclude  []string
	logger   *slog.Logger
	entries  map[string]string
}

// New returns an empty index. Most callers want Load.
func New(opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	volumes := opts.Volumes
	if volumes == nil {
		volumes = SystemVolumes{}
	}
	return &Index{
		snapshot: opts.SnapshotPath,
		volumes:  volumes,
		exclude:  cleanPaths(opts.Exclude),
		logger:   logger,
		entries:  make(map[string]string),
	}
}

// Load reads the snapshot and falls back to a full rebuild when it is missing
// or unreadable. The returned index is always usable; a non-nil error is the
// *PersistError of the fallback rebuild.
func Load(ctx context.Context, opts Options, progress func(Progress)) (*Index, error) {
	idx := New(opts)
	entries, err := readSnapshot(idx.snapshot)
	if err == nil {
		idx.entries = entries
		idx.logger.Info("Loaded index snapshot", "path", idx.snapshot, "entries", len(entries))
		return idx, nil
	}

	idx.logger.Warn("Index snapshot unavailable, rebuilding", "error", err)
	if err := idx.Rebuild(ctx, progress); err != nil {
		return idx, err
	}
	return idx, nil
}

// Normalize appends the .pdf suffix when name does not already end in it.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasSuffix(name, Suffix) {
		return name
	}
	return name + Suffix
}

// Lookup returns the path recorded for name after normalizing it.
func (i *Index) Lookup(name string) (string, bool) {
	name = Normalize(name)
	if name == "" {
		return "", false
	}
	path, ok := i.entries[name]
	return path, ok
}

// Len returns the number of indexed names.
func (i *Index) Len() int {
	return len(i.entries)
}

// Entries returns the mapping sorted by name.
func (i *Index) Entries() []Entry {
	out := make([]Entry, 0, len(i.entries))
	for name, path := range i.entries {
		out = append(out, Entry{Name: name, Path: path})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// SnapshotPath returns where the snapshot is read from and written to.
func (i *Index) SnapshotPath() string {
	return i.snapshot
}

// Rebuild walks every volume, replaces the mapping wholesale and persists it.
// When ctx is cancelled the previous mapping is kept.
func (i *Index) Rebuild(ctx context.Context, progress func(Progress)) error {
	if progress == nil {
		progress = func(Progress) {}
	}
	volumes, err := i.volumes.List(ctx)
	if err != nil {
		return fmt.Errorf("list volumes: %w", err)
	}
	i.logger.Info("Rebuilding index", "volumes", len(volumes))

	skip := i.skipSet(volumes)
	found := make(map[string]string)
	for n, vol := range volumes {
		progress(Progress{Volume: vol, Done: n, Total: len(volumes), Found: len(found)})
		if err := i.walkVolume(ctx, vol, skip, found); err != nil {
			return err
		}
		i.logger.Info("Scanned volume", "volume", vol, "progress", fmt.Sprintf("%d/%d", n+1, len(volumes)), "found", len(found))
		progress(Progress{Volume: vol, Done: n + 1, Total: len(volumes), Found: len(found)})
	}

	i.entries = found
	if err := writeSnapshot(i.snapshot, found); err != nil {
		i.logger.Error("Failed to persist index", "path", i.snapshot, "error", err)
		return &PersistError{Path: i.snapshot, Err: err}
	}
	i.logger.Info("Index persisted", "path", i.snapshot, "entries", len(found))
	return nil
}
