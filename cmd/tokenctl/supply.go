package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"memecoin-creator/internal/deploy"
	"memecoin-creator/internal/tokenconfig"
)

type supplyResult struct {
	InitialSupply    string `json:"initialSupply" yaml:"initialSupply"`
	ApproxTokenCount string `json:"approxTokenCount" yaml:"approxTokenCount"`
	Decimals         int    `json:"decimals" yaml:"decimals"`
	BaseUnits        string `json:"baseUnits,omitempty" yaml:"baseUnits,omitempty"`
	BaseUnitsError   string `json:"baseUnitsError,omitempty" yaml:"baseUnitsError,omitempty"`
}

func newSupplyCmd(g *globalOptions) *cobra.Command {
	var decimals int

	cmd := &cobra.Command{
		Use:   "supply <initial-supply>",
		Short: "Show how an initial supply is displayed and its base-unit amount",
		Long: `Show the approximate token count the form displays for an initial supply,
and the amount in base units (supply × 10^decimals) passed to the contract.

Examples:
  tokenctl supply 21000000
  tokenctl supply 1234567.891 --decimals 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if decimals < tokenconfig.MinDecimals || decimals > tokenconfig.MaxDecimals {
				return fmt.Errorf("decimals must be between %d and %d", tokenconfig.MinDecimals, tokenconfig.MaxDecimals)
			}

			result := supplyResult{
				InitialSupply:    args[0],
				ApproxTokenCount: tokenconfig.ApproxTokenCount(args[0]),
				Decimals:         decimals,
			}
			if result.ApproxTokenCount == "" {
				return fmt.Errorf("%q is not a number", args[0])
			}
			units, err := deploy.ParseUnits(args[0], uint8(decimals))
			if err != nil {
				result.BaseUnitsError = err.Error()
			} else {
				result.BaseUnits = units.String()
			}

			return render(cmd, g.output, result, func(w io.Writer) error {
				fmt.Fprintf(w, "%s tokens\n", result.ApproxTokenCount)
				if result.BaseUnits != "" {
					fmt.Fprintf(w, "%s base units at %d decimals\n", result.BaseUnits, decimals)
				} else {
					fmt.Fprintf(w, "not representable at %d decimals: %s\n", decimals, result.BaseUnitsError)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&decimals, "decimals", tokenconfig.MaxDecimals, "token decimals")
	return cmd
}
