package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chime.click/internal/tracking"
)

// newAnalyzeCommand creates the analyze command with subcommands
func newAnalyzeCommand() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze playback tracking data",
		Long:  "Analyze playback tracking data to understand usage patterns and missing theme sounds",
	}

	analyzeCmd.AddCommand(newAnalyzeMissingCommand())
	analyzeCmd.AddCommand(newAnalyzeUsageCommand())
	analyzeCmd.AddCommand(newAnalyzeSummaryCommand())

	return analyzeCmd
}

// analyzeFlags holds the filter flags shared by analyze subcommands
type analyzeFlags struct {
	days      int
	kind      string
	element   string
	theme     string
	limit     int
	preset    string
	since     string
	jsonOut   bool
	sessionID string
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.days, "days", 7, "Number of days to analyze (0 = all time)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Filter by interaction kind (click, pointerenter, ...)")
	cmd.Flags().StringVar(&f.element, "element", "", "Filter by element identifier")
	cmd.Flags().StringVar(&f.theme, "theme", "", "Filter by theme key")
	cmd.Flags().StringVar(&f.sessionID, "session", "", "Filter by session identifier")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "Maximum number of results to show")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Date preset (today, yesterday, last-week, this-month, all-time)")
	cmd.Flags().StringVar(&f.since, "since", "", "Natural-language start date (e.g. \"3 days ago\")")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output as JSON")
}

// filter converts the flags into a tracking query filter
func (f *analyzeFlags) filter() (tracking.QueryFilter, error) {
	filter := tracking.QueryFilter{
		Days:       f.days,
		EventKind:  f.kind,
		Element:    f.element,
		Theme:      f.theme,
		SessionID:  f.sessionID,
		Limit:      f.limit,
		DatePreset: f.preset,
	}

	if f.since != "" {
		start, err := tracking.ParseNaturalDate(f.since)
		if err != nil {
			return filter, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.StartTime = &start
		filter.Days = 0
		filter.DatePreset = ""
	}

	return filter, nil
}

// newAnalyzeMissingCommand creates the analyze missing subcommand
func newAnalyzeMissingCommand() *cobra.Command {
	var flags analyzeFlags

	missingCmd := &cobra.Command{
		Use:   "missing",
		Short: "Show sounds that were requested but not found",
		Long: `Show sounds that were requested but not found in the active theme.

Results are ordered by frequency (most requested first) to help prioritize
which sounds to add to a theme.

Examples:
  chime analyze missing
  chime analyze missing --days 30
  chime analyze missing --preset today
  chime analyze missing --kind click
  chime analyze missing --since "2 weeks ago"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeMissing(cmd, &flags)
		},
	}

	flags.register(missingCmd)
	return missingCmd
}

// runAnalyzeMissing executes the analyze missing command
func runAnalyzeMissing(cmd *cobra.Command, flags *analyzeFlags) error {
	db, err := analyzeDatabase(cmd)
	if err != nil {
		return err
	}

	filter, err := flags.filter()
	if err != nil {
		return err
	}

	missing, err := tracking.GetMissingSounds(db, filter)
	if err != nil {
		slog.Error("failed to get missing sounds", "error", err)
		return fmt.Errorf("failed to analyze missing sounds: %w", err)
	}

	if flags.jsonOut {
		return writeJSON(cmd.OutOrStdout(), missing)
	}

	if len(missing) == 0 {
		cmd.Println("No missing sounds recorded. Your theme covers everything that was requested.")
		return nil
	}

	cmd.Printf("Missing sounds (%s):\n\n", describeRange(filter))
	for _, sound := range missing {
		cmd.Printf("  %4dx  %s", sound.RequestCount, sound.Path)
		if len(sound.EventKinds) > 0 {
			cmd.Printf("  [%s]", strings.Join(sound.EventKinds, ", "))
		}
		cmd.Println()
	}

	return nil
}

// newAnalyzeUsageCommand creates the analyze usage subcommand
func newAnalyzeUsageCommand() *cobra.Command {
	var flags analyzeFlags

	usageCmd := &cobra.Command{
		Use:   "usage",
		Short: "Show which sounds actually played",
		Long: `Show which sounds actually played, ordered by play count.

Examples:
  chime analyze usage
  chime analyze usage --days 30 --limit 10
  chime analyze usage --kind pointerenter --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeUsage(cmd, &flags)
		},
	}

	flags.register(usageCmd)
	return usageCmd
}

// runAnalyzeUsage executes the analyze usage command
func runAnalyzeUsage(cmd *cobra.Command, flags *analyzeFlags) error {
	db, err := analyzeDatabase(cmd)
	if err != nil {
		return err
	}

	filter, err := flags.filter()
	if err != nil {
		return err
	}

	usage, err := tracking.GetSoundUsage(db, filter)
	if err != nil {
		slog.Error("failed to get sound usage", "error", err)
		return fmt.Errorf("failed to analyze sound usage: %w", err)
	}

	if flags.jsonOut {
		return writeJSON(cmd.OutOrStdout(), usage)
	}

	if len(usage) == 0 {
		cmd.Println("No playback recorded in the selected range.")
		return nil
	}

	cmd.Printf("Sound usage (%s):\n\n", describeRange(filter))
	for _, u := range usage {
		last := time.Unix(u.LastPlayed, 0).Format("2006-01-02 15:04")
		cmd.Printf("  %4dx  %-40s  avg fallback %.1f  last %s\n",
			u.PlayCount, u.Path, u.AvgFallback, last)
	}

	return nil
}

// newAnalyzeSummaryCommand creates the analyze summary subcommand
func newAnalyzeSummaryCommand() *cobra.Command {
	var flags analyzeFlags

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show overall playback statistics",
		Long: `Show overall playback statistics: totals, fallback distribution, and
per-interaction counts.

Examples:
  chime analyze summary
  chime analyze summary --preset this-month --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeSummary(cmd, &flags)
		},
	}

	flags.register(summaryCmd)
	return summaryCmd
}

// runAnalyzeSummary executes the analyze summary command
func runAnalyzeSummary(cmd *cobra.Command, flags *analyzeFlags) error {
	db, err := analyzeDatabase(cmd)
	if err != nil {
		return err
	}

	filter, err := flags.filter()
	if err != nil {
		return err
	}

	summary, err := tracking.GetUsageSummary(db, filter)
	if err != nil {
		slog.Error("failed to get usage summary", "error", err)
		return fmt.Errorf("failed to analyze usage summary: %w", err)
	}

	kinds, err := tracking.GetKindDistribution(db, filter)
	if err != nil {
		slog.Warn("failed to get kind distribution", "error", err)
		// Continue without distribution - not critical
	}

	if flags.jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"summary": summary,
			"kinds":   kinds,
		})
	}

	cmd.Printf("Playback summary (%s):\n\n", describeRange(filter))
	cmd.Printf("  Total events:        %d\n", summary.TotalEvents)
	cmd.Printf("  Unique sounds:       %d\n", summary.UniqueSounds)
	cmd.Printf("  Muted events:        %d\n", summary.MutedEvents)
	cmd.Printf("  Avg fallback level:  %.2f\n", summary.AvgFallbackLevel)

	if len(summary.FallbackDistribution) > 0 {
		cmd.Println("\n  Fallback distribution:")
		for level := 1; level <= 4; level++ {
			if count, ok := summary.FallbackDistribution[level]; ok {
				cmd.Printf("    level %d: %d\n", level, count)
			}
		}
	}

	if len(kinds) > 0 {
		cmd.Println("\n  Interactions:")
		for _, k := range kinds {
			cmd.Printf("    %-14s %5d (%.1f%%)\n", k.EventKind, k.Count, k.Percentage)
		}
	}

	return nil
}

// analyzeDatabase returns the tracking database, initializing it on demand
func analyzeDatabase(cmd *cobra.Command) (db *sql.DB, err error) {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return nil, fmt.Errorf("CLI instance not found in context")
	}

	cli.initializeTracking()

	if cli.trackingDB == nil {
		return nil, fmt.Errorf("sound tracking is not enabled or database is not available")
	}

	return cli.trackingDB, nil
}

// describeRange renders the active time filter for report headers
func describeRange(filter tracking.QueryFilter) string {
	switch {
	case filter.DatePreset != "":
		return filter.DatePreset
	case filter.StartTime != nil:
		return fmt.Sprintf("since %s", filter.StartTime.Format("2006-01-02"))
	case filter.Days > 0:
		return fmt.Sprintf("last %d days", filter.Days)
	default:
		return "all time"
	}
}

// writeJSON renders a value as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
