package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// lineEngine stores one page per line as "<label> rot=<degrees>".
type lineEngine struct {
	fail bool
}

var errEngine = errors.New("engine failure")

func readPages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (e *lineEngine) writePages(out string, lines []string) error {
	if e.fail {
		// leave junk behind like a half-written file would
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return errEngine
	}
	return os.WriteFile(out, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func (e *lineEngine) PageCount(path string) (int, error) {
	lines, err := readPages(path)
	return len(lines), err
}

func (e *lineEngine) Merge(inputs []string, out string) error {
	var all []string
	for _, in := range inputs {
		lines, err := readPages(in)
		if err != nil {
			return err
		}
		all = append(all, lines...)
	}
	return e.writePages(out, all)
}

func (e *lineEngine) RemovePages(in string, indices []int, out string) error {
	lines, err := readPages(in)
	if err != nil {
		return err
	}
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}
	kept := make([]string, 0, len(lines))
	for i, l := range lines {
		if !drop[i] {
			kept = append(kept, l)
		}
	}
	return e.writePages(out, kept)
}

func (e *lineEngine) Rotate(in string, turns map[int]int, out string) error {
	lines, err := readPages(in)
	if err != nil {
		return err
	}
	for idx, t := range turns {
		if t == 0 {
			continue
		}
		var label string
		var deg int
		if _, err := fmt.Sscanf(lines[idx], "%s rot=%d", &label, &deg); err != nil {
			return err
		}
		lines[idx] = fmt.Sprintf("%s rot=%d", label, (deg+t*90)%360)
	}
	return e.writePages(out, lines)
}

func writeDoc(t *testing.T, path string, n int) {
	t.Helper()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s-p%d rot=0", strings.TrimSuffix(filepath.Base(path), ".pdf"), i+1)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustPages(t *testing.T, path string) []string {
	t.Helper()
	lines, err := readPages(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}
