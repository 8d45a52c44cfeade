package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Conceptual-Machines/counterpoint-api/pkg/embedded"
	"github.com/spf13/cobra"
)

func newRulesCmd(flags *rootFlags) *cobra.Command {
	var (
		speciesRaw string
		example    bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules and weights for a species",
		Long: `Lists the rules for a species with the weights in effect. Weight 100 is a
hard rule, 1..99 a penalty, 0 switches the rule off. --example prints a rule
override file to start from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if example {
				_, err := out.Write(embedded.RulesExampleYAML)
				return err
			}

			sp, err := speciesFlag(speciesRaw)
			if err != nil {
				return err
			}
			catalog, err := flags.catalog()
			if err != nil {
				return err
			}
			list := catalog.Rules(sp)
			if asJSON {
				return writeJSON(out, list)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tWEIGHT\tNAME\n")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.ID, r.Weight, r.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&speciesRaw, "species", "s", "1", "Species 1..5")
	cmd.Flags().BoolVar(&example, "example", false, "Print an example override file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
