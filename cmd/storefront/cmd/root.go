package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Eshhar121/ecommerce-frontend/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Server-rendered storefront in front of the e-commerce REST backend",
	Long: `storefront serves the shop's pages and role dashboards. Each browser gets
its own backend session, identified by a signed visitor cookie, and every
protected page is gated on the identity the backend reports for it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: STOREFRONT_DEBUG)")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// loadConfig reads the optional config file and returns the validated
// configuration. Flags bound by subcommands take precedence over env.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
