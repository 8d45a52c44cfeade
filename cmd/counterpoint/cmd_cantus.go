package main

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/spf13/cobra"
)

func newCantusCmd(flags *rootFlags) *cobra.Command {
	var (
		req    models.CantusRequest
		seed   uint64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "cantus",
		Short: "Generate a cantus firmus",
		Example: `  counterpoint cantus
  counterpoint cantus --mode phrygian --finalis E --measures 11 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			svc, err := flags.service()
			if err != nil {
				return err
			}
			resp, err := svc.Cantus(context.Background(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resp)
			}
			fmt.Fprintf(out, "%s %s, %d notes (seed %d)\n", resp.Finalis, resp.Mode.DisplayName(), len(resp.Notes), resp.Seed)
			fmt.Fprintln(out, theory.FormatLine(resp.Notes))
			if resp.Fallback {
				fmt.Fprintln(out, "note: no random melody passed validation, using the fallback skeleton")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Mode, "mode", "", "Church mode (default dorian)")
	cmd.Flags().StringVar(&req.Finalis, "finalis", "", "Final note letter (default D)")
	cmd.Flags().IntVar(&req.Measures, "measures", 0, "Length, clamped to 8..14 (default random)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible melody")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
