package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

func (i *Index) skipSet(volumes []string) map[string]struct{} {
	skip := make(map[string]struct{}, len(volumes)+len(i.exclude))
	for _, v := range volumes {
		skip[filepath.Clean(v)] = struct{}{}
	}
	for _, e := range i.exclude {
		skip[e] = struct{}{}
	}
	return skip
}

// walkVolume adds every *.pdf below root to found. Directories in skip are
// not descended into unless they are root itself; nested volumes get their
// own pass. Unreadable directories are skipped.
func (i *Index) walkVolume(ctx context.Context, root string, skip map[string]struct{}, found map[string]string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			i.logger.Debug("Skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[path]; ok {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, Suffix) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		found[name] = abs
		return nil
	})
}

func cleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}
