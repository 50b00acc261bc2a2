package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/database"
	"github.com/nao1215/linkcheck/internal/model"
)

const testSeed = "https://example.com/"

// newTestRun builds a run with the given records.
func newTestRun(startedAt time.Time, records map[string]*model.LinkRecord) *model.Run {
	run := model.NewRun(testSeed)
	run.StartedAt = startedAt
	for u, r := range records {
		run.Table.Set(u, r)
	}
	return run
}

func TestCompareRuns(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	previous := newTestRun(t0, map[string]*model.LinkRecord{
		testSeed:                      {StatusCode: 200, ContentDigest: "aaa", Checks: model.Checks{HasSEOTitle: model.CheckPassed}},
		"https://example.com/about":   {StatusCode: 200, ContentDigest: "bbb", Checks: model.Checks{TitleMatch: model.CheckFailed}},
		"https://example.com/old":     {StatusCode: 301, RedirectLocation: "https://example.com/about"},
		"https://example.com/removed": {StatusCode: 200, Checks: model.Checks{HasSEOTitle: model.CheckFailed}},
	})
	current := newTestRun(t0.Add(time.Hour), map[string]*model.LinkRecord{
		testSeed:                    {StatusCode: 200, ContentDigest: "aaa", Checks: model.Checks{HasSEOTitle: model.CheckPassed}},
		"https://example.com/about": {StatusCode: 200, ContentDigest: "ccc", Checks: model.Checks{TitleMatch: model.CheckPassed}},
		"https://example.com/old":   {StatusCode: 404},
		"https://example.com/new":   {StatusCode: 200, Checks: model.Checks{CanonicalMatch: model.CheckFailed}},
	})

	result := compareRuns(previous, current)

	if result.SeedURL != testSeed {
		t.Errorf("SeedURL = %q", result.SeedURL)
	}
	if got := strings.Join(result.NewURLs, ","); got != "https://example.com/new" {
		t.Errorf("NewURLs = %q", got)
	}
	if got := strings.Join(result.RemovedURLs, ","); got != "https://example.com/removed" {
		t.Errorf("RemovedURLs = %q", got)
	}
	if len(result.StatusChanges) != 1 ||
		result.StatusChanges[0] != (StatusChange{URL: "https://example.com/old", Previous: 301, Current: 404}) {
		t.Errorf("StatusChanges = %+v", result.StatusChanges)
	}
	if len(result.NewWarnings) != 1 ||
		result.NewWarnings[0] != (WarningChange{URL: "https://example.com/new", Warning: model.WarningCanonicalMismatch}) {
		t.Errorf("NewWarnings = %+v", result.NewWarnings)
	}
	wantResolved := []WarningChange{
		{URL: "https://example.com/about", Warning: model.WarningTitleMismatch},
		{URL: "https://example.com/removed", Warning: model.WarningMissingSEOTitle},
	}
	if len(result.ResolvedWarnings) != len(wantResolved) {
		t.Fatalf("ResolvedWarnings = %+v", result.ResolvedWarnings)
	}
	for i, w := range wantResolved {
		if result.ResolvedWarnings[i] != w {
			t.Errorf("ResolvedWarnings[%d] = %+v, want %+v", i, result.ResolvedWarnings[i], w)
		}
	}
	if got := strings.Join(result.ContentChanges, ","); got != "https://example.com/about" {
		t.Errorf("ContentChanges = %q", got)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("UnchangedCount = %d, want 1", result.UnchangedCount)
	}

	// Flagged: previous about+removed = 2, current new = 1.
	if result.PreviousRun.Flagged != 2 || result.CurrentRun.Flagged != 1 {
		t.Errorf("flagged = %d -> %d", result.PreviousRun.Flagged, result.CurrentRun.Flagged)
	}
	if result.Change.Direction != directionImproved || result.Change.FlaggedDelta != -1 {
		t.Errorf("Change = %+v", result.Change)
	}
}

func TestCompareRunsMissingDigest(t *testing.T) {
	t.Parallel()

	now := time.Now()
	previous := newTestRun(now, map[string]*model.LinkRecord{
		testSeed: {StatusCode: 200, ContentDigest: "aaa"},
	})
	current := newTestRun(now, map[string]*model.LinkRecord{
		testSeed: {StatusCode: 200},
	})

	result := compareRuns(previous, current)
	if len(result.ContentChanges) != 0 {
		t.Errorf("expected no content change, got %v", result.ContentChanges)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("UnchangedCount = %d, want 1", result.UnchangedCount)
	}
	if result.Change.Direction != directionUnchanged {
		t.Errorf("Direction = %q", result.Change.Direction)
	}
}

func TestCalculateChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous RunStats
		current  RunStats
		want     string
	}{
		{"improved", RunStats{Flagged: 3}, RunStats{Flagged: 1}, directionImproved},
		{"worsened", RunStats{Flagged: 0}, RunStats{Flagged: 2}, directionWorsened},
		{"unchanged", RunStats{Flagged: 1, Mismatches: 1}, RunStats{Flagged: 1, Mismatches: 2}, directionUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := calculateChange(tt.previous, tt.current).Direction; got != tt.want {
				t.Errorf("Direction = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestShortDigest(t *testing.T) {
	t.Parallel()

	if got := shortDigest(""); got != "-" {
		t.Errorf("shortDigest(\"\") = %q", got)
	}
	if got := shortDigest("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortDigest = %q", got)
	}
}

// openHistory returns a database holding two runs of testSeed.
func openHistory(t *testing.T) *database.HistoryDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := []*model.Run{
		newTestRun(t0, map[string]*model.LinkRecord{
			testSeed:                    {StatusCode: 200},
			"https://example.com/about": {StatusCode: 200},
		}),
		newTestRun(t0.Add(time.Hour), map[string]*model.LinkRecord{
			testSeed:                    {StatusCode: 200},
			"https://example.com/about": {StatusCode: 404},
		}),
	}
	for _, run := range runs {
		if _, err := db.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}
	return db
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    historyOptions
		want    []string
		wantErr bool
	}{
		{
			name: "list seeds",
			opts: historyOptions{listSeeds: true},
			want: []string{"Checked seeds (1)", testSeed},
		},
		{
			name: "list runs",
			opts: historyOptions{seed: testSeed},
			want: []string{"Run history for " + testSeed + " (2 runs)", "links:2"},
		},
		{
			name: "list runs of unknown seed",
			opts: historyOptions{seed: "https://unknown.example/"},
			want: []string{"No run history found"},
		},
		{
			name: "compare latest runs",
			opts: historyOptions{seed: testSeed, compare: true},
			want: []string{"Run Comparison: " + testSeed, "https://example.com/about: 200 -> 404"},
		},
		{
			name: "link history",
			opts: historyOptions{link: "https://example.com/about"},
			want: []string{"History of https://example.com/about (2 runs)"},
		},
		{
			name:    "compare unknown seed",
			opts:    historyOptions{seed: "https://unknown.example/", compare: true},
			wantErr: true,
		},
		{
			name:    "compare with missing run id",
			opts:    historyOptions{seed: testSeed, compare: true, withRunID: 99},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := openHistory(t)

			var out bytes.Buffer
			err := runHistory(context.Background(), db, tt.opts, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunHistoryCompareJSON(t *testing.T) {
	t.Parallel()

	db := openHistory(t)

	var out bytes.Buffer
	opts := historyOptions{seed: testSeed, compare: true, jsonOutput: true}
	if err := runHistory(context.Background(), db, opts, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result ComparisonResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(result.StatusChanges) != 1 || result.StatusChanges[0].Current != 404 {
		t.Errorf("StatusChanges = %+v", result.StatusChanges)
	}
}

func TestHistoryCmdRequiresSeed(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db-dir", t.TempDir()})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "seed URL is required") {
		t.Errorf("expected missing seed error, got %v", err)
	}
}
