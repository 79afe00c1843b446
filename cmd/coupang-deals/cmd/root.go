// Package cmd implements the coupang-deals CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lsm5482-blip/my-coupang-bot/internal/config"
	"github.com/lsm5482-blip/my-coupang-bot/pkg/logger"
)

var (
	cfgFile string
	envFile string
	rootCmd = &cobra.Command{
		Use:   "coupang-deals",
		Short: "Track Coupang Partners prices and surface all-time lows",
		Long: "coupang-deals fetches the goldbox and best-seller lists of configured\n" +
			"categories from the Coupang Partners API, records every observed sale\n" +
			"price, and reports discounted products at their all-time low.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (defaults and environment are used when empty)")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "dotenv file with COUPANG_* credentials")
	rootCmd.PersistentFlags().
		String("log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("log-format", "", "override logging.format (text, json)")

	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format")))

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(deeplinkCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(remoteCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	viper.SetEnvPrefix("COUPANG_DEALS")
	viper.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
}

// loadConfig reads the config and builds the logger, applying CLI or
// COUPANG_DEALS_LOG_* overrides.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if lvl := viper.GetString("log_level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if f := viper.GetString("log_format"); f != "" {
		cfg.Logging.Format = f
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}
