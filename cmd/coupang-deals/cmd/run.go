package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every category once and report all-time lows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Fetch.Output
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.RunTimeout)
			defer cancel()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			res, runErr := a.engine.RunOnce(ctx)
			if res == nil {
				return runErr
			}

			if output != "" {
				if err := writeResult(output, res); err != nil {
					return err
				}
				log.Info("run result written", "path", output)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				err = outputJSON(out, res)
			} else {
				err = printRunTable(out, res)
			}
			if err != nil {
				return fmt.Errorf("printing result: %w", err)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the run result as JSON to this file")
	cmd.Flags().StringVar(&format, "format", "table", "stdout format (table, json)")
	return cmd
}

func writeResult(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path from trusted CLI flag
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := outputJSON(f, v); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	return f.Close()
}
