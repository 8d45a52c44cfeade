package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/Conceptual-Machines/counterpoint-api/internal/species"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/spf13/cobra"
)

// --- Global Flags ---
type rootFlags struct {
	rulesConfig string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "counterpoint",
		Short: "Generate and analyze Fuxian species counterpoint",
		Long: `counterpoint writes cantus firmus melodies and first to fourth species
counterpoint against them, checks finished exercises against the rules,
and exports the result as a Standard MIDI File.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if !flags.verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.rulesConfig, "rules-config", os.Getenv("RULES_CONFIG_PATH"),
		"YAML file re-weighting the default rules")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show engine logs on stderr")

	rootCmd.AddCommand(
		newCantusCmd(flags),
		newGenerateCmd(flags),
		newAnalyzeCmd(flags),
		newRulesCmd(flags),
	)
	return rootCmd
}

// service builds a generation service without metrics or history
func (f *rootFlags) service() (*services.GenerationService, error) {
	catalog, err := f.catalog()
	if err != nil {
		return nil, err
	}
	return services.NewGenerationService(catalog, species.DefaultMaxNodes, nil, nil), nil
}

func (f *rootFlags) catalog() (*rules.Catalog, error) {
	if f.rulesConfig == "" {
		return rules.DefaultCatalog(), nil
	}
	return rules.LoadCatalog(f.rulesConfig)
}

// noteInputs parses "D4 F4 E4 D4" into request notes
func noteInputs(line string) ([]models.NoteInput, error) {
	notes, err := theory.ParseLine(line)
	if err != nil {
		return nil, err
	}
	out := make([]models.NoteInput, len(notes))
	for i, n := range notes {
		out[i] = models.NoteInput{Pitch: string(n.Pitch)}
	}
	return out, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func speciesFlag(raw string) (theory.Species, error) {
	sp, err := theory.ParseSpecies(raw)
	if err != nil {
		return 0, fmt.Errorf("--species: %w", err)
	}
	return sp, nil
}
