package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/barksync-analyzer/internal/app"
	"github.com/RyanBlaney/barksync-analyzer/internal/history"
)

var (
	historyListLimit   int
	historyListSources bool
	historyExportLimit int
	historyExportFile  string
)

// historyCmd represents the history command group
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved analyses",
	Long: `Inspect the local history of analyses.

Analyses are saved when history.enabled is set. Records are listed newest
first; ids may be abbreviated to any unambiguous prefix.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved analyses",
	Long: `Export saved analyses in the chosen output format.

Examples:
  barksync history export -o yaml --file analyses.yaml
  barksync history export --limit 50 > recent.json`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd, historyDeleteCmd)

	historyListCmd.Flags().IntVar(&historyListLimit, "limit", 20, "maximum records to list (0 for all)")
	historyListCmd.Flags().BoolVar(&historyListSources, "sources", false, "list the distinct analyzed source paths instead")
	historyExportCmd.Flags().IntVar(&historyExportLimit, "limit", 0, "maximum records to export (0 for all)")
	historyExportCmd.Flags().StringVar(&historyExportFile, "file", "", "write the export to this file")
}

func openHistory(ctx *app.Context) (*app.AnalyzerApp, *history.Store, error) {
	analyzer, err := app.NewAnalyzerApp(newAppContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	store, err := analyzer.OpenHistory()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return analyzer, store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	analyzer, store, err := openHistory(&app.Context{})
	if err != nil {
		return err
	}
	defer store.Close()

	if historyListSources {
		return listHistorySources(cmd, analyzer, store)
	}

	records, err := store.List(cmd.Context(), historyListLimit)
	if err != nil {
		return err
	}

	if outputFormat != "" {
		return analyzer.Output(records)
	}

	if len(records) == 0 {
		printWarning("no saved analyses in %s", analyzer.Config().History.Dir)
		return nil
	}

	printSectionHeader(fmt.Sprintf("SAVED ANALYSES (%d)", len(records)))
	for _, r := range records {
		c := r.Result.AudioCharacteristics.Classification
		printInfo("%s  %s  %-6s %-8s %s", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			c.BarkType, c.EmotionalState, r.Source)
	}
	return nil
}

func listHistorySources(cmd *cobra.Command, analyzer *app.AnalyzerApp, store *history.Store) error {
	sources, err := store.Sources(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat != "" {
		return analyzer.Output(sources)
	}

	if len(sources) == 0 {
		printWarning("no saved analyses in %s", analyzer.Config().History.Dir)
		return nil
	}

	printSectionHeader(fmt.Sprintf("ANALYZED SOURCES (%d)", len(sources)))
	for _, src := range sources {
		printInfo("%s", src)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	analyzer, store, err := openHistory(&app.Context{})
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no saved analysis matches %q", args[0])
	}
	if err != nil {
		return err
	}

	return analyzer.Output(record)
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	analyzer, store, err := openHistory(&app.Context{OutputFile: historyExportFile})
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), historyExportLimit)
	if err != nil {
		return err
	}

	if err := analyzer.Output(records); err != nil {
		return err
	}
	if historyExportFile != "" {
		printSuccess("exported %d analyses to %s", len(records), historyExportFile)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	_, store, err := openHistory(&app.Context{})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	record, err := store.Get(ctx, args[0])
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no saved analysis matches %q", args[0])
	}
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, record.ID); err != nil {
		return err
	}
	printSuccess("deleted %s", record.ID)
	return nil
}
