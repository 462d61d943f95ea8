package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/transfer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import chunks from a .csv or .xlsx file",
	Long:  "Import chunks from a spreadsheet. The file needs columns starting with 'jp' and 'en'; ef, interval, next_due_date and review_count are optional.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := transfer.DetectFormat(args[0])
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		var n int
		if format == models.ImportFormatXLSX {
			n, err = a.transfer.ImportXLSX(cmd.Context(), a.userID, f)
		} else {
			n, err = a.transfer.ImportCSV(cmd.Context(), a.userID, f)
		}
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d chunks\n", n)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export every chunk to a .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := transfer.DetectFormat(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		if format == models.ImportFormatXLSX {
			err = a.transfer.ExportXLSX(cmd.Context(), a.userID, f)
		} else {
			err = a.transfer.ExportCSV(cmd.Context(), a.userID, f)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("exporting %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", args[0])
		return nil
	},
}
