package errlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

func TestDigest_Contents(t *testing.T) {
	logger := newTestLogger(t)

	e := apperror.New("digest content check",
		apperror.WithComponent(apperror.ComponentLaTeX),
		apperror.WithCategory(apperror.CategoryLaTeXCompilationFailed),
		apperror.WithSuggestedFix("escape the underscore"),
	)
	logger.LogError(e)

	content, err := logger.DigestContent()
	if err != nil {
		t.Fatalf("digest not written: %v", err)
	}

	for _, want := range []string{
		"ERROR CONTEXT FOR AI DEBUGGING",
		"ERROR SUMMARY",
		"Total Errors: 1",
		"Errors by Component:",
		"  - latex: 1",
		"Errors by Severity:",
		"  - error: 1",
		"RECENT ERRORS (Last 10)",
		"1. [" + e.Code + "]",
		"   Message: digest content check",
		"   User Message: Document compilation failed. Please check the template.",
		"   Suggested Fix: escape the underscore",
		"DEBUGGING INSTRUCTIONS FOR AI AGENTS",
		"  - latex: services/latex_service",
		"END OF ERROR CONTEXT",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("digest missing %q", want)
		}
	}
}

func TestDigest_RecentLimit(t *testing.T) {
	logger, err := New(t.TempDir(), Options{DisableConsole: true, RecentCount: 3})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Close()

	for i := 0; i < 5; i++ {
		logger.LogError(apperror.New("overflow"))
	}

	content, err := logger.DigestContent()
	if err != nil {
		t.Fatalf("digest not written: %v", err)
	}

	if !strings.Contains(content, "RECENT ERRORS (Last 3)") {
		t.Error("digest does not honor the configured recent count")
	}
	if strings.Contains(content, "\n4. [") {
		t.Error("digest lists more entries than the recent count")
	}
}

func TestRecentRecords_NewestDateFileFirst(t *testing.T) {
	logger := newTestLogger(t)

	dateDir := filepath.Join(logger.Root(), "errors", "by_date")

	oldRecord := apperror.New("old error").Record()
	oldRecord.Timestamp = time.Now().UTC().AddDate(0, 0, -2)
	oldJSON, _ := oldRecord.ToJSON()
	oldName := oldRecord.Timestamp.Format("2006-01-02") + ".log"
	if err := os.WriteFile(filepath.Join(dateDir, oldName), append(oldJSON, '\n'), 0644); err != nil {
		t.Fatalf("failed to seed old date file: %v", err)
	}

	todayErr := apperror.New("today error")
	logger.LogError(todayErr)

	records := logger.RecentErrors(10)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Code != todayErr.Code {
		t.Errorf("expected newest date file first, got %s", records[0].Code)
	}
	if records[1].Code != oldRecord.Code {
		t.Errorf("expected older record second, got %s", records[1].Code)
	}
}

func TestRecentRecords_SkipsMalformedLines(t *testing.T) {
	logger := newTestLogger(t)

	e := apperror.New("good record")
	logger.LogError(e)

	dateDir := filepath.Join(logger.Root(), "errors", "by_date")
	entries, err := os.ReadDir(dateDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one date file, got %v (%v)", entries, err)
	}

	path := filepath.Join(dateDir, entries[0].Name())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open date file: %v", err)
	}
	f.WriteString("{not json\n\n")
	f.Close()

	records := logger.RecentErrors(10)
	if len(records) != 1 {
		t.Fatalf("expected malformed lines to be skipped, got %d records", len(records))
	}
	if records[0].Code != e.Code {
		t.Errorf("unexpected record: %s", records[0].Code)
	}
}

func TestDigest_EmptyState(t *testing.T) {
	summary := Summary{}
	content := renderDigest(summary, nil, 10, time.Now().UTC())

	if !strings.Contains(content, "Total Errors: 0") {
		t.Error("empty digest missing zero total")
	}
	if !strings.Contains(content, "Last Updated: N/A") {
		t.Error("empty digest must report N/A for last updated")
	}
}
