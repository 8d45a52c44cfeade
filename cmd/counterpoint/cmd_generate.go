package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Conceptual-Machines/counterpoint-api/internal/analysis"
	"github.com/Conceptual-Machines/counterpoint-api/internal/midi"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		speciesRaw string
		cantusLine string
		below      bool
		seed       uint64
		asJSON     bool
		midiPath   string
		bpm        float64
		meter      string
		req        models.GenerateRequest
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write counterpoint against a cantus firmus",
		Example: `  counterpoint generate --species 1 --cantus "D4 F4 E4 D4"
  counterpoint generate --species 4 --cantus "D4 E4 F4 D4" --mode dorian --finalis D --midi out.mid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := speciesFlag(speciesRaw)
			if err != nil {
				return err
			}
			if req.CantusFirmus, err = noteInputs(cantusLine); err != nil {
				return fmt.Errorf("--cantus: %w", err)
			}
			ts, err := theory.ParseTimeSignature(meter)
			if err != nil {
				return fmt.Errorf("--meter: %w", err)
			}
			above := !below
			req.Above = &above
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			svc, err := flags.service()
			if err != nil {
				return err
			}
			resp, err := svc.Generate(context.Background(), services.RequestMeta{RequestID: "cli"}, sp, req)
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s: %w", sp.Name(), resp.Err)
			}

			if midiPath != "" {
				cf := models.Notes(req.CantusFirmus, theory.Whole)
				if err := writeMIDI(midiPath, cf, resp.Notes, bpm); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resp)
			}
			fmt.Fprintf(out, "%s, seed %d, %s nodes\n", sp.Name(), resp.Seed, humanize.Comma(int64(resp.Nodes)))
			fmt.Fprintf(out, "cantus:       %s\n", formatBars(models.Notes(req.CantusFirmus, theory.Whole), ts))
			fmt.Fprintf(out, "counterpoint: %s\n", formatBars(resp.Notes, ts))
			for _, w := range resp.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			printReport(out, resp.Analysis)
			if midiPath != "" {
				fmt.Fprintf(out, "wrote %s\n", midiPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&speciesRaw, "species", "s", "1", "Species 1..4")
	cmd.Flags().StringVarP(&cantusLine, "cantus", "c", "", `Cantus firmus pitches, e.g. "D4 F4 E4 D4"`)
	cmd.Flags().BoolVar(&below, "below", false, "Write the counterpoint below the cantus")
	cmd.Flags().StringVar(&req.Mode, "mode", "", "Restrict the counterpoint to a church mode")
	cmd.Flags().StringVar(&req.Finalis, "finalis", "", "Final of the mode")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().StringVar(&midiPath, "midi", "", "Also write a Standard MIDI File")
	cmd.Flags().Float64Var(&bpm, "bpm", midi.DefaultBPM, "Tempo for --midi")
	cmd.Flags().StringVar(&meter, "meter", "C|", `Bar lines for text output: "C", "C|" or "n/d"`)
	_ = cmd.MarkFlagRequired("cantus")
	return cmd
}

// formatBars renders a line with bar lines between measures of ts
func formatBars(notes []theory.Note, ts theory.TimeSignature) string {
	measures := ts.Measures(notes)
	bars := make([]string, len(measures))
	for i, m := range measures {
		bars[i] = theory.FormatLine(m)
	}
	return strings.Join(bars, " | ")
}

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var (
		speciesRaw string
		cantusLine string
		cpLine     string
		below      bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Check a finished exercise against the rules",
		Example: `  counterpoint analyze --species 1 --cantus "D4 F4 E4 D4" --counterpoint "D5 C5 B4 D5"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := speciesFlag(speciesRaw)
			if err != nil {
				return err
			}
			above := !below
			req := models.AnalyzeRequest{Above: &above}
			if req.CantusFirmus, err = noteInputs(cantusLine); err != nil {
				return fmt.Errorf("--cantus: %w", err)
			}
			if req.Counterpoint, err = noteInputs(cpLine); err != nil {
				return fmt.Errorf("--counterpoint: %w", err)
			}

			svc, err := flags.service()
			if err != nil {
				return err
			}
			report, err := svc.Analyze(sp, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			printReport(out, &report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&speciesRaw, "species", "s", "1", "Species 1..4")
	cmd.Flags().StringVarP(&cantusLine, "cantus", "c", "", "Cantus firmus pitches")
	cmd.Flags().StringVarP(&cpLine, "counterpoint", "p", "", "Counterpoint pitches")
	cmd.Flags().BoolVar(&below, "below", false, "The counterpoint lies below the cantus")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("cantus")
	_ = cmd.MarkFlagRequired("counterpoint")
	return cmd
}

// printReport lists the summary and every failed rule
func printReport(w io.Writer, r *analysis.Report) {
	if r == nil {
		return
	}
	fmt.Fprintln(w, r.Summary)
	for _, n := range r.NoteAnalyses {
		for _, res := range n.RuleResults {
			if !res.Passed {
				fmt.Fprintf(w, "  note %d (%s over %s, %s) %s: %s\n",
					n.NoteIndex+1, n.CPPitch, n.CFPitch, n.Interval, res.RuleName, res.Message)
			}
		}
	}
}

func writeMIDI(path string, cf, cp []theory.Note, bpm float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := midi.Export(f, cf, cp, bpm); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
