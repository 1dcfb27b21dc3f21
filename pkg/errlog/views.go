package errlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

const blockDivider = "================================================================================"

// Summary is the cumulative state persisted to error_summary.json after
// every logged error. The file is overwritten whole, never appended.
type Summary struct {
	TotalErrors       int              `json:"total_errors"`
	LastError         *apperror.Record `json:"last_error"`
	ErrorsByComponent map[string]int   `json:"errors_by_component"`
	ErrorsBySeverity  map[string]int   `json:"errors_by_severity"`
	LastUpdated       time.Time        `json:"last_updated"`
}

// appendFile appends content to path, creating the file if needed.
func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)
	return err
}

// appendComponentFile appends a detailed human-readable block to the
// per-component view.
func (l *AppLogger) appendComponentFile(e *apperror.AppError) error {
	path := filepath.Join(l.errorsDir, "by_component", fmt.Sprintf("%s_errors.log", e.Component))

	var b strings.Builder
	b.WriteString("\n" + blockDivider + "\n")
	fmt.Fprintf(&b, "Error Code: %s\n", e.Code)
	fmt.Fprintf(&b, "Timestamp: %s\n", e.Timestamp.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "Severity: %s\n", e.Severity)
	fmt.Fprintf(&b, "Category: %s\n", e.Category)
	fmt.Fprintf(&b, "Message: %s\n", e.Message)
	fmt.Fprintf(&b, "User Message: %s\n", e.UserMessage)
	if e.SuggestedFix != "" {
		fmt.Fprintf(&b, "Suggested Fix: %s\n", e.SuggestedFix)
	}
	if e.Context != nil {
		contextJSON, err := json.MarshalIndent(e.Context, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "Context: %s\n", contextJSON)
		}
	}
	if e.StackTrace != "" && e.Severity.IncludesStackTrace() {
		fmt.Fprintf(&b, "\nStack Trace:\n%s\n", e.StackTrace)
	}
	b.WriteString(blockDivider + "\n")

	return appendFile(path, b.String())
}

// appendSeverityFile appends one compact line to the per-severity view.
func (l *AppLogger) appendSeverityFile(e *apperror.AppError) error {
	path := filepath.Join(l.errorsDir, "by_severity", fmt.Sprintf("%s_errors.log", e.Severity))
	line := fmt.Sprintf("%s | [%s] %s: %s\n", e.Timestamp.Format(time.RFC3339Nano), e.Code, e.Component, e.Message)
	return appendFile(path, line)
}

// appendDateFile appends the structured record as one JSON line to the
// per-date view, keyed by the UTC date of the error timestamp.
func (l *AppLogger) appendDateFile(record apperror.Record) error {
	dateStr := record.Timestamp.UTC().Format("2006-01-02")
	path := filepath.Join(l.errorsDir, "by_date", dateStr+".log")

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return appendFile(path, string(data)+"\n")
}

// writeSummaryLocked overwrites error_summary.json with the cumulative
// state. Caller must hold l.mu.
func (l *AppLogger) writeSummaryLocked(record apperror.Record) error {
	summary := Summary{
		TotalErrors:       l.totalErrors,
		LastError:         &record,
		ErrorsByComponent: l.errorsByComponent,
		ErrorsBySeverity:  l.errorsBySeverity,
		LastUpdated:       time.Now().UTC(),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.errorsDir, summaryName), data, 0644)
}

// systemInfo is the process/platform context captured in debug snapshots.
type systemInfo struct {
	Platform       string `json:"platform"`
	RuntimeVersion string `json:"runtime_version"`
	CWD            string `json:"cwd"`
}

// debugSnapshot is the point-in-time capture written for critical errors.
type debugSnapshot struct {
	Error      apperror.Record `json:"error"`
	SystemInfo systemInfo      `json:"system_info"`
	RecentLogs []string        `json:"recent_logs"`
	CreatedAt  time.Time       `json:"created_at"`
}

// writeDebugSnapshot writes a debug snapshot named after the error's
// tracking code.
func (l *AppLogger) writeDebugSnapshot(record apperror.Record) error {
	path := filepath.Join(l.errorsDir, "debug_snapshots", record.Code+".json")

	cwd, _ := os.Getwd()
	snapshot := debugSnapshot{
		Error: record,
		SystemInfo: systemInfo{
			Platform:       runtime.GOOS + "/" + runtime.GOARCH,
			RuntimeVersion: runtime.Version(),
			CWD:            cwd,
		},
		RecentLogs: l.recentSessionLines(l.snapshotTail),
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// recentSessionLines returns the trailing lines of the session log, or an
// empty list when the log is missing or unreadable.
func (l *AppLogger) recentSessionLines(limit int) []string {
	data, err := os.ReadFile(filepath.Join(l.logsDir, sessionLogName))
	if err != nil {
		return []string{}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}
