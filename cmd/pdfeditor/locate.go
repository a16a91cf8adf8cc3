package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pdfeditor/internal/index"
)

func newLocateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "locate [name...]",
		Short: "Print the indexed path of PDFs by file name",
		Long: `Looks each name up in the index (".pdf" is added when missing). Without
arguments names are read from stdin, offering a rebuild when one is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}
			defer s.Close()

			idx, err := s.loadIndex(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				p := &linePrompter{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
				path, ok, err := idx.Resolve(cmd.Context(), p, progressPrinter(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintln(out, path)
				}
				return nil
			}

			missing := 0
			for _, name := range args {
				path, ok := idx.Lookup(name)
				if !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: not found\n", index.Normalize(name))
					missing++
					continue
				}
				fmt.Fprintln(out, path)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d names not found; try `pdfeditor rebuild`", missing, len(args))
			}
			return nil
		},
	}
}

// linePrompter answers index.Resolve from line based input.
type linePrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *linePrompter) NextName() (string, bool) {
	fmt.Fprint(p.out, "PDF name (blank to stop): ")
	if !p.in.Scan() {
		return "", false
	}
	name := strings.TrimSpace(p.in.Text())
	return name, name != ""
}

func (p *linePrompter) ConfirmRebuild(name string) bool {
	for {
		fmt.Fprint(p.out, "Rebuild the index and search again? (y/n): ")
		if !p.in.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
		case "y", "yes":
			return true
		case "n", "no", "":
			return false
		}
	}
}

func (p *linePrompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}
