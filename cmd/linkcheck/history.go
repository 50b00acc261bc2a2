package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/database"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/spf13/cobra"
)

// Constants for change direction.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command shows and compares runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show and compare past link checks",
		Long: `History displays runs stored in the history database.

Every check is saved unless --no-save is given. For a seed URL, history
lists the stored runs. With --compare it shows what changed between the
two latest runs (or between the latest run and --with-run-id):
- URLs that appeared or disappeared
- Status code changes
- New and resolved warnings
- Pages whose content changed

Examples:
  # List runs of a seed
  linkcheck history https://example.com/

  # Compare the latest two runs
  linkcheck history --compare https://example.com/

  # Compare the latest run with run 3
  linkcheck history --compare --with-run-id 3 https://example.com/

  # Show the state of one URL across all runs
  linkcheck history --link https://example.com/about

  # List all checked seeds
  linkcheck history --list-seeds`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-seeds", "L", false,
		"List all seeds with stored runs")
	cmd.Flags().Bool("compare", false,
		"Compare the latest run of the seed with a previous one")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (see the run list for IDs)")
	cmd.Flags().String("link", "",
		"Show the state of a single URL across all runs")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	seed       string
	listSeeds  bool
	compare    bool
	withRunID  int64
	link       string
	jsonOutput bool
	dbDir      string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.listSeeds, err = flags.GetBool("list-seeds"); err != nil {
		return err
	}
	if opts.compare, err = flags.GetBool("compare"); err != nil {
		return err
	}
	if opts.withRunID, err = flags.GetInt64("with-run-id"); err != nil {
		return err
	}
	if opts.link, err = flags.GetString("link"); err != nil {
		return err
	}
	if opts.jsonOutput, err = flags.GetBool("json"); err != nil {
		return err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return err
	}
	if len(args) > 0 {
		opts.seed = args[0]
	}

	// Validate arguments before opening the database
	if !opts.listSeeds && opts.link == "" && opts.seed == "" {
		return errors.New("seed URL is required (use --list-seeds to see checked seeds)")
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

// runHistory dispatches to the requested history view.
func runHistory(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	switch {
	case opts.listSeeds:
		return listSeeds(ctx, db, out)
	case opts.link != "":
		return showLinkHistory(ctx, db, opts.link, opts.jsonOutput, out)
	case opts.compare:
		return runComparison(ctx, db, opts.seed, opts.withRunID, opts.jsonOutput, out)
	default:
		return listRuns(ctx, db, opts.seed, opts.jsonOutput, out)
	}
}

// listSeeds lists all seeds that have runs in the database.
func listSeeds(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seeds: %w", err)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No checked seeds found in the database.")
		fmt.Fprintln(out, "\nUse 'linkcheck <url>' to check a page or feed.")
		return nil
	}

	fmt.Fprintf(out, "Checked seeds (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'linkcheck history <url>' to see the runs of a seed.")

	return nil
}

// listRuns lists all runs of a seed.
func listRuns(ctx context.Context, db *database.HistoryDB, seed string, jsonOutput bool, out io.Writer) error {
	runs, err := db.ListRuns(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No run history found for %s\n", seed)
		return nil
	}

	fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", seed, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, meta := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatRunSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'linkcheck history --compare <url>' to compare the latest two runs.")
	return nil
}

// formatRunSummary formats the totals of a run on one line.
func formatRunSummary(s *model.Summary) string {
	if s == nil {
		return "N/A"
	}
	if s.Total == 0 {
		return "No links"
	}
	return fmt.Sprintf("links:%d flagged:%d mismatches:%d missing-titles:%d",
		s.Total, s.Flagged, s.Mismatches, s.MissingTitles)
}

// showLinkHistory prints the state of one URL in every stored run.
func showLinkHistory(ctx context.Context, db *database.HistoryDB, url string, jsonOutput bool, out io.Writer) error {
	snapshots, err := db.LinkHistory(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to get link history: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, snapshots)
	}

	if len(snapshots) == 0 {
		fmt.Fprintf(out, "No history found for %s\n", url)
		return nil
	}

	fmt.Fprintf(out, "History of %s (%d runs):\n\n", url, len(snapshots))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-8s  %s\n", "Run", "Date", "Status", "Warnings", "Digest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, snap := range snapshots {
		warned := "no"
		if snap.HasFailure {
			warned = "yes"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-8s  %s\n",
			snap.RunID,
			snap.Timestamp.Local().Format("2006-01-02 15:04:05"),
			snap.StatusCode,
			warned,
			shortDigest(snap.ContentDigest),
		)
	}
	return nil
}

// shortDigest abbreviates a content digest for display.
func shortDigest(digest string) string {
	if digest == "" {
		return "-"
	}
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

// runComparison compares the latest run of a seed with an earlier one.
func runComparison(ctx context.Context, db *database.HistoryDB, seed string, withRunID int64, jsonOutput bool, out io.Writer) error {
	runs, err := db.LatestRuns(ctx, seed, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", seed)
	}
	current := runs[0]

	var previous *model.Run
	if withRunID > 0 {
		previous, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if previous.SeedURL != seed {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previous.SeedURL, seed)
		}
	} else {
		if len(runs) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		previous = runs[1]
	}

	comparison := compareRuns(previous, current)

	if jsonOutput {
		return writeJSON(out, comparison)
	}
	outputComparisonText(out, comparison)
	return nil
}

// ComparisonResult holds the differences between two runs of a seed.
type ComparisonResult struct {
	// SeedURL is the URL both runs started from.
	SeedURL string `json:"seed_url"`

	// PreviousRun contains the totals of the earlier run.
	PreviousRun RunStats `json:"previous_run"`

	// CurrentRun contains the totals of the later run.
	CurrentRun RunStats `json:"current_run"`

	// NewURLs are URLs verified only in the current run.
	NewURLs []string `json:"new_urls,omitempty"`

	// RemovedURLs are URLs verified only in the previous run.
	RemovedURLs []string `json:"removed_urls,omitempty"`

	// StatusChanges are URLs whose status code changed.
	StatusChanges []StatusChange `json:"status_changes,omitempty"`

	// NewWarnings are warnings present only in the current run.
	NewWarnings []WarningChange `json:"new_warnings,omitempty"`

	// ResolvedWarnings are warnings present only in the previous run.
	ResolvedWarnings []WarningChange `json:"resolved_warnings,omitempty"`

	// ContentChanges are URLs whose content digest changed.
	ContentChanges []string `json:"content_changes,omitempty"`

	// UnchangedCount is the number of URLs identical in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// Change describes the overall direction.
	Change Change `json:"change"`
}

// RunStats contains the totals of a run for comparison display.
type RunStats struct {
	StartedAt     time.Time `json:"started_at"`
	Total         int       `json:"total"`
	Flagged       int       `json:"flagged"`
	Mismatches    int       `json:"mismatches"`
	MissingTitles int       `json:"missing_titles"`
}

// StatusChange is a URL whose status code differs between runs.
type StatusChange struct {
	URL      string `json:"url"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// WarningChange is one warning of one URL.
type WarningChange struct {
	URL     string `json:"url"`
	Warning string `json:"warning"`
}

// Change describes the change in link health between runs.
type Change struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// FlaggedDelta is the change in flagged links.
	FlaggedDelta int `json:"flagged_delta"`

	// MismatchDelta is the change in failed comparisons.
	MismatchDelta int `json:"mismatch_delta"`

	// MissingTitleDelta is the change in missing titles.
	MissingTitleDelta int `json:"missing_title_delta"`
}

// newRunStats extracts the totals of a run.
func newRunStats(run *model.Run) RunStats {
	s := model.Summarize(run)
	return RunStats{
		StartedAt:     run.StartedAt,
		Total:         s.Total,
		Flagged:       s.Flagged,
		Mismatches:    s.Mismatches,
		MissingTitles: s.MissingTitles,
	}
}

// compareRuns compares two runs of a seed. URLs of the current run are
// visited first, each table in ascending URL order.
func compareRuns(previous, current *model.Run) *ComparisonResult {
	result := &ComparisonResult{
		SeedURL:     current.SeedURL,
		PreviousRun: newRunStats(previous),
		CurrentRun:  newRunStats(current),
	}

	prevTable := previous.Table
	if prevTable == nil {
		prevTable = model.NewStatusTable()
	}
	curTable := current.Table
	if curTable == nil {
		curTable = model.NewStatusTable()
	}

	curTable.Each(func(url string, cur *model.LinkRecord) {
		prev, ok := prevTable.Get(url)
		if !ok {
			result.NewURLs = append(result.NewURLs, url)
			for _, w := range cur.Checks.Warnings() {
				result.NewWarnings = append(result.NewWarnings, WarningChange{URL: url, Warning: w})
			}
			return
		}

		unchanged := true
		if prev.StatusCode != cur.StatusCode {
			result.StatusChanges = append(result.StatusChanges, StatusChange{
				URL:      url,
				Previous: prev.StatusCode,
				Current:  cur.StatusCode,
			})
			unchanged = false
		}

		prevWarnings := prev.Checks.Warnings()
		curWarnings := cur.Checks.Warnings()
		for _, w := range curWarnings {
			if !slices.Contains(prevWarnings, w) {
				result.NewWarnings = append(result.NewWarnings, WarningChange{URL: url, Warning: w})
				unchanged = false
			}
		}
		for _, w := range prevWarnings {
			if !slices.Contains(curWarnings, w) {
				result.ResolvedWarnings = append(result.ResolvedWarnings, WarningChange{URL: url, Warning: w})
				unchanged = false
			}
		}

		// A missing digest means the body was not read; that is not a change.
		if prev.ContentDigest != "" && cur.ContentDigest != "" && prev.ContentDigest != cur.ContentDigest {
			result.ContentChanges = append(result.ContentChanges, url)
			unchanged = false
		}

		if unchanged {
			result.UnchangedCount++
		}
	})

	prevTable.Each(func(url string, prev *model.LinkRecord) {
		if _, ok := curTable.Get(url); ok {
			return
		}
		result.RemovedURLs = append(result.RemovedURLs, url)
		for _, w := range prev.Checks.Warnings() {
			result.ResolvedWarnings = append(result.ResolvedWarnings, WarningChange{URL: url, Warning: w})
		}
	})

	result.Change = calculateChange(result.PreviousRun, result.CurrentRun)
	return result
}

// calculateChange calculates the change between two runs.
// The direction follows the number of flagged links.
func calculateChange(previous, current RunStats) Change {
	change := Change{
		FlaggedDelta:      current.Flagged - previous.Flagged,
		MismatchDelta:     current.Mismatches - previous.Mismatches,
		MissingTitleDelta: current.MissingTitles - previous.MissingTitles,
	}

	switch {
	case change.FlaggedDelta < 0:
		change.Direction = directionImproved
	case change.FlaggedDelta > 0:
		change.Direction = directionWorsened
	default:
		change.Direction = directionUnchanged
	}
	return change
}

// outputComparisonText writes the comparison result in human-readable form.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Run Comparison: %s\n", result.SeedURL)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nStatus: %s\n", formatDirection(result.Change.Direction))

	fmt.Fprintf(out, "\nPrevious run: %s\n", result.PreviousRun.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  %s\n", result.CurrentRun.StartedAt.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nTotals:")
	fmt.Fprintf(out, "  %-15s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
	for _, row := range []struct {
		label     string
		prev, cur int
	}{
		{"Links", result.PreviousRun.Total, result.CurrentRun.Total},
		{"Flagged", result.PreviousRun.Flagged, result.CurrentRun.Flagged},
		{"Mismatches", result.PreviousRun.Mismatches, result.CurrentRun.Mismatches},
		{"Missing titles", result.PreviousRun.MissingTitles, result.CurrentRun.MissingTitles},
	} {
		fmt.Fprintf(out, "  %-15s  %-10d  %-10d  %-10s\n", row.label, row.prev, row.cur, formatDelta(row.cur-row.prev))
	}

	if len(result.NewURLs) > 0 {
		fmt.Fprintf(out, "\nNew URLs (%d):\n", len(result.NewURLs))
		for _, u := range result.NewURLs {
			fmt.Fprintf(out, "  [+] %s\n", u)
		}
	}

	if len(result.RemovedURLs) > 0 {
		fmt.Fprintf(out, "\nRemoved URLs (%d):\n", len(result.RemovedURLs))
		for _, u := range result.RemovedURLs {
			fmt.Fprintf(out, "  [-] %s\n", u)
		}
	}

	if len(result.StatusChanges) > 0 {
		fmt.Fprintf(out, "\nStatus Changes (%d):\n", len(result.StatusChanges))
		for _, c := range result.StatusChanges {
			fmt.Fprintf(out, "  [~] %s: %d -> %d\n", c.URL, c.Previous, c.Current)
		}
	}

	if len(result.NewWarnings) > 0 {
		fmt.Fprintf(out, "\nNew Warnings (%d):\n", len(result.NewWarnings))
		for _, w := range result.NewWarnings {
			fmt.Fprintf(out, "  [+] %s: %s\n", w.URL, w.Warning)
		}
	}

	if len(result.ResolvedWarnings) > 0 {
		fmt.Fprintf(out, "\nResolved Warnings (%d):\n", len(result.ResolvedWarnings))
		for _, w := range result.ResolvedWarnings {
			fmt.Fprintf(out, "  [-] %s: %s\n", w.URL, w.Warning)
		}
	}

	if len(result.ContentChanges) > 0 {
		fmt.Fprintf(out, "\nContent Changes (%d):\n", len(result.ContentChanges))
		for _, u := range result.ContentChanges {
			fmt.Fprintf(out, "  [~] %s\n", u)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d links\n", result.UnchangedCount)
	}
}

// formatDirection formats the change direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (fewer flagged links)"
	case directionWorsened:
		return "WORSENED (more flagged links)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
