// Package main provides tokenctl, a CLI for checking token configurations
// and preparing their deployment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memecoin-creator/internal/config"
	"memecoin-creator/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	envFile    string
	network    string
	output     string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "tokenctl",
		Short: "Validate meme token configurations and plan their deployment",
		Long: `tokenctl checks token configurations with the same rules as the
creation form and prepares the deployment parameters for the MemeToken contract.

Configuration (in order of priority):
  1. Command-line flags (--network, ...)
  2. Environment variables (MEMECOIN_*, ALCHEMY_API_KEY, AMOY_PRIVATE_KEY)
  3. .env file and config file (--config)

Examples:
  tokenctl validate --name "Gold Token" --symbol GLT --supply 21000000
  tokenctl supply 1234567.891
  tokenctl deploy plan --file token.yaml --network amoy`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file (missing file is ignored)")
	root.PersistentFlags().StringVar(&opts.network, "network", "", "target network key or chain id (default from config)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newValidateCmd(opts),
		newSupplyCmd(opts),
		newNetworksCmd(opts),
		newDeployCmd(opts),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tokenctl version %s\n", Version)
		},
	}
}

// loadConfig loads the shared configuration with the --network override applied.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
		Override: func(c *config.Config) {
			if o.network != "" {
				c.Network = o.network
			}
		},
	})
}

// logger returns a console logger at debug level with --verbose, otherwise a no-op.
func (o *globalOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := logging.New("debug", "console")
	if err != nil {
		return zap.NewNop()
	}
	return l
}
