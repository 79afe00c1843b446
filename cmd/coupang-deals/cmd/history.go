package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history [product-id...]",
		Short: "Print recorded price histories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := newStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("loading price history: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if len(args) == 0 {
					return outputJSON(out, records)
				}
				subset := make(map[string]any, len(args))
				for _, id := range args {
					subset[id] = records[id]
				}
				return outputJSON(out, subset)
			}
			return printHistoryTable(out, records, args)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")
	return cmd
}
