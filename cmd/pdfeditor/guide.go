package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfeditor/docs"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Print the user guide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), docs.UserGuide())
			return err
		},
	}
}
