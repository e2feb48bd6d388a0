package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/barksync-analyzer/internal/app"
	"github.com/RyanBlaney/barksync-analyzer/pkg/vocalization"
)

// taxonomyCmd represents the taxonomy command
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the vocalization and emotional state reference tables",
	Long: `Print the reference taxonomy.

The taxonomy lists six vocalization types with plausible frequency ranges and
typical emotions, and the emotional states grouped by polarity with their
arousal, valence and dominance scores. It is reference data only; the
classifier does not consult it.

Examples:
  barksync taxonomy
  barksync taxonomy -o yaml`,
	Args: cobra.NoArgs,
	RunE: runTaxonomy,
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	if outputFormat != "" {
		data := map[string]any{
			"vocalizations":    vocalization.VocalizationProfiles(),
			"emotional_states": vocalization.EmotionalStates(),
		}
		formatted, err := app.FormatOutput(outputFormat, data)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(formatted)
		return err
	}

	printSectionHeader("VOCALIZATION TYPES")
	for _, p := range vocalization.VocalizationProfiles() {
		printInfo("%-8s %6.0f - %-6.0f Hz  %s", p.Type, p.FrequencyRange.Min, p.FrequencyRange.Max,
			strings.Join(p.Emotions, ", "))
	}

	for _, polarity := range vocalization.Polarities {
		fmt.Println()
		printSectionHeader(strings.ToUpper(string(polarity)) + " STATES")
		for _, s := range vocalization.EmotionalStatesByPolarity(polarity) {
			printInfo("%-11s arousal %.1f  valence %+.1f  dominance %.1f", s.State, s.Arousal, s.Valence, s.Dominance)
		}
	}

	return nil
}
