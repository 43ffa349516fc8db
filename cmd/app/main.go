// File: cmd/app/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/infra/metrics"
)

var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	envFile    string
	dev        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "qwintry-bot",
		Short:         "Qwintry shipping calculator Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "path to YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "developer mode: noop transport and AI when credentials are missing")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the webhook server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), flags)
			},
		},
		newWebhookCmd(flags),
		newAdminTokenCmd(flags),
	)
	return root
}

// load reads .env (when present), the config file and the environment.
func load(flags *rootFlags) (*config.Config, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("env file: %w", err)
		}
	}
	cfg, err := config.LoadConfig(flags.configPath, flags.dev)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	metrics.SetBuildInfo(version, commit)
	return cfg, nil
}

func newAdminTokenCmd(flags *rootFlags) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(flags)
			if err != nil {
				return err
			}
			tok, err := newAuth(cfg).Mint(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject, recorded in the sub claim")
	return cmd
}
