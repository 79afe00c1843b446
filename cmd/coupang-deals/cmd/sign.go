package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	var (
		method string
		path   string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print a signed Authorization header for a Partners API request",
		Example: "  coupang-deals sign --path /v2/providers/affiliate_open_api/apis/openapi/v1/products/goldbox\n" +
			"  coupang-deals sign --method POST --path .../deeplink --query '{\"coupangUrls\":[...]}'",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			signer, err := newSigner(cfg)
			if err != nil {
				return fmt.Errorf("creating signer: %w", err)
			}

			header, ts, err := signer.Sign(strings.ToUpper(method), path, query)
			if err != nil {
				return fmt.Errorf("signing request: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "signed-date: %s\n", ts)
			fmt.Fprintf(out, "Authorization: %s\n", header)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&path, "path", "", "request path")
	cmd.Flags().StringVar(&query, "query", "", "query string for GET or JSON body for POST")
	cobra.CheckErr(cmd.MarkFlagRequired("path"))
	return cmd
}
