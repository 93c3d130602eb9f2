package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"memecoin-creator/internal/network"
)

func newNetworksCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List supported networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := network.Keys()
			chains := make([]network.Chain, 0, len(keys))
			for _, k := range keys {
				c, err := network.Lookup(k)
				if err != nil {
					return err
				}
				chains = append(chains, c)
			}

			return render(cmd, g.output, chains, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tCHAIN ID\tNAME\tCURRENCY\tEXPLORER")
				for _, c := range chains {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", c.Key, c.ID, c.Name, c.NativeCurrency, c.ExplorerURL)
				}
				return tw.Flush()
			})
		},
	}
}
