package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/lsm5482-blip/my-coupang-bot/internal/api/client"
	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
)

func remoteCmd() *cobra.Command {
	remote := &cobra.Command{
		Use:   "remote",
		Short: "Query or control a running coupang-deals server",
		Long: "remote talks to the HTTP API of a coupang-deals serve process.\n" +
			"The server address comes from --server or COUPANG_DEALS_SERVER.",
	}

	remote.PersistentFlags().String("server", "http://localhost:8080", "API server URL")
	remote.PersistentFlags().String("format", "table", "output format (table, json)")
	cobra.CheckErr(viper.BindPFlag("server", remote.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("remote_format", remote.PersistentFlags().Lookup("format")))

	remote.AddCommand(
		remoteStatusCmd(),
		remoteTriggerCmd(),
		remoteQuotaCmd(),
		remotePriceCmd(),
		remoteCategoriesCmd(),
	)
	return remote
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("remote_format") == "json"
}

func remoteStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server's last run",
		Example: `  coupang-deals remote status
  coupang-deals remote status --format json --server http://deals:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			last, err := newClient().GetLastRun(cmd.Context())
			if errors.Is(err, apiclient.ErrNotFound) {
				fmt.Fprintln(out, "No run has completed yet.")
				return nil
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(out, last)
			}
			if err := printRunTable(out, &last.Run); err != nil {
				return err
			}
			if last.Error != "" {
				fmt.Fprintln(out, "error:", last.Error)
			}
			return nil
		},
	}
}

func remoteTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Start a run on the server outside the schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := newClient().TriggerRun(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run triggered.")
			return nil
		},
	}
}

func remoteQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the server's Partners API budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := newClient().GetQuota(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, q)
			}
			return printQuotaTable(out, q)
		},
	}
}

func remotePriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "price <product-id>",
		Short:   "Show a product's recorded prices",
		Args:    cobra.ExactArgs(1),
		Example: `  coupang-deals remote price 7001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newClient().GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, h)
			}
			tw := newTabWriter(out)
			tw.writef("PRODUCT\tOBSERVATIONS\tLOW\n")
			tw.writef("%s\t%d\t%s\n", h.ProductID, h.Observations, notify.FormatWon(h.Low))
			return tw.finish()
		},
	}
}

func remoteCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the server's configured categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := newClient().ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, cats)
			}
			tw := newTabWriter(out)
			tw.writef("ID\tLABEL\tSLUG\n")
			for _, c := range cats {
				tw.writef("%s\t%s\t%s\n", c.ID, c.Label, c.Slug)
			}
			return tw.finish()
		},
	}
}

func printQuotaTable(w io.Writer, q *apiclient.Quota) error {
	tw := newTabWriter(w)
	tw.writef("LIMIT\tUSED\tREMAINING\tRESETS\n")
	limit, remaining := fmt.Sprint(q.DailyLimit), fmt.Sprint(q.Remaining)
	if q.DailyLimit == 0 {
		limit, remaining = "unlimited", "-"
	}
	tw.writef("%s\t%d\t%s\t%s\n", limit, q.DailyUsed, remaining, q.ResetAt.Local().Format("2006-01-02 15:04"))
	return tw.finish()
}
