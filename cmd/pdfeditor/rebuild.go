package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfeditor/internal/index"
)

func newRebuildCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Walk every volume and rewrite the PDF index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}
			defer s.Close()

			idx := index.New(s.indexOptions())
			if err := idx.Rebuild(cmd.Context(), progressPrinter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d PDFs into %s\n", idx.Len(), idx.SnapshotPath())
			return nil
		},
	}
}
