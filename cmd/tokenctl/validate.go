package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memecoin-creator/internal/api"
	"memecoin-creator/internal/domain"
)

// errInvalidConfig makes the command exit non-zero after printing field errors.
var errInvalidConfig = errors.New("token config is invalid")

func newValidateCmd(g *globalOptions) *cobra.Command {
	in := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a token configuration",
		Long: `Validate a token configuration with the creation form rules.

Every invalid field is reported. The exit status is non-zero when the
configuration is invalid.

Examples:
  tokenctl validate --name "Gold Token" --symbol GLT --supply 21000000 --decimals 18
  tokenctl validate --file token.yaml -o json
  echo '{"name":"Gold Token","symbol":"GLT","initialSupply":"1e6","decimals":6}' | tokenctl validate -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := in.input(cmd)
			if err != nil {
				return err
			}

			logger := g.logger()
			service := api.NewTokenService(api.ServiceOptions{Logger: logger})
			result := service.Validate(domain.ValidationSourceCLI, input)
			logger.Debug("validated token config",
				zap.Bool("valid", result.Valid),
				zap.Int("errors", len(result.Errors)))

			if err := render(cmd, g.output, result, func(w io.Writer) error {
				return printValidation(w, result)
			}); err != nil {
				return err
			}
			if !result.Valid {
				return errInvalidConfig
			}
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func printValidation(w io.Writer, r api.ValidationResult) error {
	if !r.Valid {
		fmt.Fprintln(w, "INVALID")
		for _, f := range r.Errors.Fields() {
			fmt.Fprintf(w, "  %-22s %s\n", f, r.Errors[f])
		}
		return nil
	}

	c := r.Config
	fmt.Fprintln(w, "VALID")
	fmt.Fprintf(w, "  %-22s %s\n", "name", c.Basic.Name)
	fmt.Fprintf(w, "  %-22s %s\n", "symbol", c.Basic.Symbol)
	fmt.Fprintf(w, "  %-22s %s (≈ %s tokens)\n", "initialSupply", c.Basic.InitialSupply, r.ApproxTokenCount)
	fmt.Fprintf(w, "  %-22s %d\n", "decimals", c.Basic.Decimals)
	if c.AdvancedEnabled() {
		f := c.Flags()
		fmt.Fprintf(w, "  %-22s %t\n", "canBurn", f.CanBurn)
		fmt.Fprintf(w, "  %-22s %t\n", "canMint", f.CanMint)
		fmt.Fprintf(w, "  %-22s %t\n", "canPause", f.CanPause)
		fmt.Fprintf(w, "  %-22s %t\n", "blacklistEnabled", f.BlacklistEnabled)
		fmt.Fprintf(w, "  %-22s %t\n", "deflationEnabled", f.DeflationEnabled)
		fmt.Fprintf(w, "  %-22s %t\n", "superDeflationEnabled", f.SuperDeflationEnabled)
	}
	return nil
}
