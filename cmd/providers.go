package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/confmorph/confmorph/pkg/providers/catalog"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered model providers and their availability",
	Long: `Prints every registered provider with its cost weight, default model
and whether a usable credential was found in the environment. Auto
selection tries providers in ascending cost order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := catalog.NewDefaultRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOST\tDEFAULT MODEL\tCREDENTIAL")
		for _, name := range registry.List() {
			desc, _ := registry.Get(name)
			cost, ignored := desc.EffectiveCost()
			costCol := fmt.Sprintf("%d", cost)
			if ignored {
				costCol += " (negative override ignored)"
			}
			credCol := "not required"
			if desc.RequiresAPIKey {
				if _, ok := desc.ResolveAPIKey(""); ok {
					credCol = "found"
				} else {
					credCol = "missing"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", desc.Name, costCol, desc.DefaultModel, credCol)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
