package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Engine is the PDF capability the operations delegate to. Page indices are
// zero-based. Implementations write a complete file at out or fail.
type Engine interface {
	PageCount(path string) (int, error)
	Merge(inputs []string, out string) error
	RemovePages(in string, indices []int, out string) error
	// Rotate turns each listed page clockwise by turns*90 degrees.
	Rotate(in string, turns map[int]int, out string) error
}

// PDFCPU implements Engine with pdfcpu.
type PDFCPU struct {
	conf *model.Configuration
}

// NewPDFCPU returns an engine that never touches pdfcpu's config directory.
func NewPDFCPU() *PDFCPU {
	api.DisableConfigDir()
	return &PDFCPU{conf: model.NewDefaultConfiguration()}
}

func (p *PDFCPU) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", path, err)
	}
	return n, nil
}

func (p *PDFCPU) Merge(inputs []string, out string) error {
	if err := api.MergeCreateFile(inputs, out, false, p.conf); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

func (p *PDFCPU) RemovePages(in string, indices []int, out string) error {
	if err := api.RemovePagesFile(in, out, pageSelection(indices), p.conf); err != nil {
		return fmt.Errorf("remove pages: %w", err)
	}
	return nil
}

// Rotate applies one pdfcpu pass per distinct turn count, chaining through
// temporary files next to out.
func (p *PDFCPU) Rotate(in string, turns map[int]int, out string) error {
	byTurns := make(map[int][]int)
	for idx, t := range turns {
		t %= 4
		if t == 0 {
			continue
		}
		byTurns[t] = append(byTurns[t], idx)
	}
	if len(byTurns) == 0 {
		return copyFile(in, out)
	}

	keys := make([]int, 0, len(byTurns))
	for t := range byTurns {
		keys = append(keys, t)
	}
	sort.Ints(keys)

	src := in
	var intermediates []string
	defer func() {
		for _, f := range intermediates {
			os.Remove(f)
		}
	}()
	for n, t := range keys {
		dst := out
		if n < len(keys)-1 {
			f, err := os.CreateTemp(filepath.Dir(out), ".rotate-*.pdf")
			if err != nil {
				return err
			}
			f.Close()
			dst = f.Name()
			intermediates = append(intermediates, dst)
		}
		if err := api.RotateFile(src, dst, t*90, pageSelection(byTurns[t]), p.conf); err != nil {
			return fmt.Errorf("rotate pages by %d degrees: %w", t*90, err)
		}
		src = dst
	}
	return nil
}

// pageSelection renders zero-based indices as pdfcpu's one-based page list.
func pageSelection(indices []int) []string {
	sorted := append([]int{}, indices...)
	sort.Ints(sorted)
	out := make([]string, 0, len(sorted))
	for _, idx := range sorted {
		out = append(out, strconv.Itoa(idx+1))
	}
	return out
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
