package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"

	"pdfeditor/internal/index"
)

// progressPrinter draws a one-line progress bar for a rebuild, redrawn in
// place after every volume.
func progressPrinter(w io.Writer) func(index.Progress) {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	return func(p index.Progress) {
		percent := 0.0
		if p.Total > 0 {
			percent = float64(p.Done) / float64(p.Total)
		}
		fmt.Fprintf(w, "\r%s %d/%d volumes, %d PDFs", bar.ViewAs(percent), p.Done, p.Total, p.Found)
		if p.Total > 0 && p.Done == p.Total {
			fmt.Fprintln(w)
		}
	}
}
