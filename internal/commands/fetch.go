package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Pull the export feed and ingest new transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			parsed, affected, err := app.ingestService(ctx).FetchAndStore(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Fetched %d transactions, %d new or updated\n", parsed, affected)
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import transactions from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			parsed, affected, err := app.ingestService(ctx).ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d transactions, %d new or updated\n", parsed, affected)
			return nil
		},
	}
}
