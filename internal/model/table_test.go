package model

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func TestStatusTable(t *testing.T) {
	t.Parallel()

	t.Run("concurrent writers", func(t *testing.T) {
		t.Parallel()

		table := NewStatusTable()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				table.Set(fmt.Sprintf("https://example.com/%02d", i), &LinkRecord{StatusCode: 200})
			}(i)
		}
		wg.Wait()

		if table.Len() != 50 {
			t.Fatalf("expected 50 records, got %d", table.Len())
		}
		urls := table.URLs()
		if urls[0] != "https://example.com/00" || urls[49] != "https://example.com/49" {
			t.Errorf("URLs not sorted: first=%s last=%s", urls[0], urls[49])
		}
	})

	t.Run("get missing url", func(t *testing.T) {
		t.Parallel()

		table := NewStatusTable()
		if _, ok := table.Get("https://example.com/"); ok {
			t.Error("expected missing record")
		}
	})

	t.Run("json round trip keeps records", func(t *testing.T) {
		t.Parallel()

		table := NewStatusTable()
		table.Set("https://example.com/a", &LinkRecord{StatusCode: 301, RedirectLocation: "/b"})

		data, err := json.Marshal(table)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		decoded := NewStatusTable()
		if err := json.Unmarshal(data, decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		r, ok := decoded.Get("https://example.com/a")
		if !ok || r.RedirectLocation != "/b" {
			t.Errorf("unexpected decoded record: %+v", r)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	run := NewRun("https://example.com/")
	run.Table.Set("https://example.com/", &LinkRecord{
		StatusCode:  200,
		ContentType: "text/html",
		Checks:      Checks{TitleMatch: CheckFailed, CanonicalMatch: CheckFailed, HasSEOTitle: CheckPassed},
	})
	run.Table.Set("https://example.com/old", &LinkRecord{StatusCode: 301})
	run.Table.Set("https://example.com/blank", &LinkRecord{
		StatusCode:  200,
		ContentType: "text/html",
		Checks:      Checks{HasSEOTitle: CheckFailed},
	})

	s := Summarize(run)
	if s.Total != 3 {
		t.Errorf("expected total 3, got %d", s.Total)
	}
	if s.Flagged != 2 {
		t.Errorf("expected 2 flagged, got %d", s.Flagged)
	}
	if s.Mismatches != 2 {
		t.Errorf("expected 2 mismatches, got %d", s.Mismatches)
	}
	if s.MissingTitles != 1 {
		t.Errorf("expected 1 missing title, got %d", s.MissingTitles)
	}
	codes := s.StatusCodes()
	if len(codes) != 2 || codes[0] != 301 || codes[1] != 200 {
		t.Errorf("expected [301 200], got %v", codes)
	}
}

func TestNewRun(t *testing.T) {
	t.Parallel()

	run := NewRun("https://Example.com:8080/path")
	if run.SeedHost != "example.com" {
		t.Errorf("expected seed host example.com, got %q", run.SeedHost)
	}
	if run.Duration() != 0 {
		t.Error("expected zero duration for unfinished run")
	}
}
