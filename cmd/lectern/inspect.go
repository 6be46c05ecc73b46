package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/pdfdoc"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Print page count and page geometry for a PDF",
	Long: `Inspect a PDF document and print what lectern would discover about it:
the page count and the first page's dimensions and aspect ratio. Useful
for checking a document before adding it to the library.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := pdfdoc.Open(args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		fmt.Printf("pages: %d\n", doc.PageCount())

		w, h, err := doc.PageSize(cmd.Context(), 1)
		if err != nil {
			return fmt.Errorf("failed to read page geometry: %w", err)
		}
		fmt.Printf("page size: %.2f x %.2f pt\n", w, h)
		fmt.Printf("aspect ratio (h/w): %.4f\n", h/w)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
