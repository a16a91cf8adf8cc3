package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Volumes enumerates the storage roots a rebuild walks.
type Volumes interface {
	List(ctx context.Context) ([]string, error)
}

// SystemVolumes lists the mount points of every physical partition.
type SystemVolumes struct{}

func (SystemVolumes) List(ctx context.Context) ([]string, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("enumerate partitions: %w", err)
	}
	mounts := make([]string, 0, len(parts))
	for _, p := range parts {
		mp := strings.TrimSpace(p.Mountpoint)
		if mp == "" {
			continue
		}
		// drive letters come back as "C:"
		if strings.HasSuffix(mp, ":") {
			mp += string(os.PathSeparator)
		}
		mounts = append(mounts, mp)
	}
	return uniqueSorted(mounts), nil
}

// Roots is a fixed list of directories used instead of the host's volumes.
// Entries that do not exist are dropped.
type Roots []string

func (r Roots) List(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(r))
	for _, root := range cleanPaths(r) {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		out = append(out, root)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("none of the configured roots exist: %s", strings.Join(r, ", "))
	}
	return out, nil
}

func uniqueSorted(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
