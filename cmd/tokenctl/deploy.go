package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memecoin-creator/internal/config"
	"memecoin-creator/internal/deploy"
	"memecoin-creator/internal/network"
)

var errPreflightFailed = errors.New("preflight checks failed")

// deployFlags are shared by the deploy subcommands.
type deployFlags struct {
	inputFlags
	description string
	image       string
	maxSupply   string
	useDefaults bool
}

func (f *deployFlags) register(cmd *cobra.Command) {
	f.inputFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.description, "description", "", "token description (default \""+deploy.DefaultDescription+"\")")
	fl.StringVar(&f.image, "image", "", "token image URL")
	fl.StringVar(&f.maxSupply, "max-supply", "", "max supply in whole tokens (default: initial supply)")
	fl.BoolVar(&f.useDefaults, "defaults", false, "use the default MemeToken module instead of a token config")
}

// plan validates the token config and builds a plan for the configured network.
func (f *deployFlags) plan(cmd *cobra.Command, cfg *config.Config) (*deploy.Plan, error) {
	chain, err := network.Lookup(cfg.Network)
	if err != nil {
		return nil, err
	}

	var module *deploy.Module
	if f.useDefaults {
		module = deploy.DefaultModule()
	} else {
		input, err := f.input(cmd)
		if err != nil {
			return nil, err
		}
		module, err = deploy.FromInput(input, deploy.Options{
			Description: f.description,
			Image:       f.image,
			MaxSupply:   f.maxSupply,
		})
		if err != nil {
			return nil, err
		}
	}

	return deploy.NewPlan(module, chain, cfg.DeployerKey)
}

func newDeployCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Prepare a token deployment",
		Long: `Deployment commands. Nothing is signed or submitted: plan prints the
contract parameters and preflight checks the target network is ready.

The deployer address is derived from MEMECOIN_DEPLOYER_KEY or AMOY_PRIVATE_KEY.`,
	}
	cmd.AddCommand(newDeployPlanCmd(g), newDeployPreflightCmd(g))
	return cmd
}

func newDeployPlanCmd(g *globalOptions) *cobra.Command {
	f := &deployFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the deployment parameters for a token",
		Long: `Print the MemeToken constructor arguments for a validated token config.
Supplies are converted to base units (whole tokens × 10^decimals).

Examples:
  tokenctl deploy plan --name "Gold Token" --symbol GLT --supply 21000000
  tokenctl deploy plan --file token.yaml --max-supply 42000000 -o json
  tokenctl deploy plan --defaults --network sepolia`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			plan, err := f.plan(cmd, cfg)
			if err != nil {
				return err
			}

			format := g.output
			if format == "" || format == "text" {
				// A plan is a document; text output is its YAML form.
				format = "yaml"
			}
			return render(cmd, format, plan.Document(), nil)
		},
	}
	f.register(cmd)
	return cmd
}

func newDeployPreflightCmd(g *globalOptions) *cobra.Command {
	f := &deployFlags{}
	var (
		rpcURL     string
		timeout    time.Duration
		retries    int
		retryDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check the network and deployer are ready for a deployment",
		Long: `Run read-only checks against the network RPC endpoint:
  - the endpoint is reachable
  - it serves the expected chain id
  - the deployer holds a non-zero native balance

The RPC endpoint is the network's Alchemy URL when ALCHEMY_API_KEY is set,
otherwise its public endpoint. --rpc-url overrides both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			plan, err := f.plan(cmd, cfg)
			if err != nil {
				return err
			}

			endpoint := rpcURL
			if endpoint == "" {
				endpoint = plan.Network.RPCURL(cfg.AlchemyAPIKey)
			}
			logger := g.logger()
			logger.Debug("running preflight",
				zap.String("network", plan.Network.Key),
				zap.String("deployer", plan.Deployer.Hex()))

			client, err := network.Dial(cmd.Context(), endpoint,
				network.WithTimeout(timeout),
				network.WithMaxRetries(retries),
				network.WithRetryDelay(retryDelay))
			if err != nil {
				return err
			}
			defer client.Close()

			report, err := deploy.NewPreflight(client).WithTimeout(timeout).Run(cmd.Context(), plan)
			if err != nil {
				return err
			}

			if err := render(cmd, g.output, report, func(w io.Writer) error {
				return printPreflight(w, report)
			}); err != nil {
				return err
			}
			if !report.OK {
				return errPreflightFailed
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&rpcURL, "rpc-url", "", "RPC endpoint (default from network)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	cmd.Flags().IntVar(&retries, "rpc-retries", network.DefaultMaxRetries, "retries on rate limiting and server errors")
	cmd.Flags().DurationVar(&retryDelay, "rpc-retry-delay", network.DefaultRetryDelay, "initial delay between retries")
	return cmd
}

func printPreflight(w io.Writer, r *deploy.PreflightReport) error {
	fmt.Fprintf(w, "Network:  %s\n", r.Network)
	fmt.Fprintf(w, "Deployer: %s\n", r.Deployer)
	if r.Balance != "" {
		fmt.Fprintf(w, "Balance:  %s\n", r.Balance)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, c := range r.Checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %-17s %s\n", mark, c.Name, c.Message)
	}
	return nil
}
