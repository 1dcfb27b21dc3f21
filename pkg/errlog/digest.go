package errlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// refreshDigestLocked regenerates the AI-context digest from the summary
// file and the newest per-date records. The file is overwritten whole.
// Caller must hold l.mu.
func (l *AppLogger) refreshDigestLocked() error {
	summary := l.readSummaryLocked()
	recent := l.recentRecordsLocked(l.recentCount)
	content := renderDigest(summary, recent, l.recentCount, time.Now().UTC())
	return os.WriteFile(filepath.Join(l.errorsDir, digestName), []byte(content), 0644)
}

// readSummaryLocked loads the current summary, treating an absent or
// malformed file as empty state.
func (l *AppLogger) readSummaryLocked() Summary {
	var summary Summary
	data, err := os.ReadFile(filepath.Join(l.errorsDir, summaryName))
	if err != nil {
		return summary
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}
	}
	return summary
}

// recentRecordsLocked collects up to limit records from the per-date files,
// scanning filenames newest first and taking records in file order. When a
// single day holds more than limit records this approximates rather than
// guarantees strict recency ordering; no stronger contract is offered.
func (l *AppLogger) recentRecordsLocked(limit int) []apperror.Record {
	dateDir := filepath.Join(l.errorsDir, "by_date")
	entries, err := os.ReadDir(dateDir)
	if err != nil {
		return []apperror.Record{}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	records := make([]apperror.Record, 0, limit)
	for _, name := range names {
		if len(records) >= limit {
			break
		}

		data, err := os.ReadFile(filepath.Join(dateDir, name))
		if err != nil {
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var record apperror.Record
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				continue
			}
			records = append(records, record)
			if len(records) >= limit {
				break
			}
		}
	}

	return records
}

// renderDigest produces the fixed-format plain-text report.
func renderDigest(summary Summary, recent []apperror.Record, recentCount int, now time.Time) string {
	var b strings.Builder

	b.WriteString(blockDivider + "\n")
	b.WriteString("ERROR CONTEXT FOR AI DEBUGGING\n")
	b.WriteString(blockDivider + "\n")
	fmt.Fprintf(&b, "\nGenerated: %s\n", now.Format(time.RFC3339Nano))
	b.WriteString("\nThis file is automatically generated and contains error context for AI agents\n")
	b.WriteString("to help debug and fix issues in the application.\n")

	b.WriteString("\n" + blockDivider + "\n")
	b.WriteString("ERROR SUMMARY\n")
	b.WriteString(blockDivider + "\n")
	fmt.Fprintf(&b, "Total Errors: %d\n", summary.TotalErrors)
	lastUpdated := "N/A"
	if !summary.LastUpdated.IsZero() {
		lastUpdated = summary.LastUpdated.Format(time.RFC3339Nano)
	}
	fmt.Fprintf(&b, "Last Updated: %s\n", lastUpdated)

	b.WriteString("\nErrors by Component:\n")
	for _, component := range sortedKeys(summary.ErrorsByComponent) {
		fmt.Fprintf(&b, "  - %s: %d\n", component, summary.ErrorsByComponent[component])
	}

	b.WriteString("\nErrors by Severity:\n")
	for _, severity := range sortedKeys(summary.ErrorsBySeverity) {
		fmt.Fprintf(&b, "  - %s: %d\n", severity, summary.ErrorsBySeverity[severity])
	}

	b.WriteString("\n" + blockDivider + "\n")
	fmt.Fprintf(&b, "RECENT ERRORS (Last %d)\n", recentCount)
	b.WriteString(blockDivider + "\n")

	for i, record := range recent {
		fmt.Fprintf(&b, "\n%d. [%s]\n", i+1, record.Code)
		fmt.Fprintf(&b, "   Component: %s\n", record.Component)
		fmt.Fprintf(&b, "   Severity: %s\n", record.Severity)
		fmt.Fprintf(&b, "   Category: %s\n", record.Category)
		fmt.Fprintf(&b, "   Message: %s\n", record.Message)
		fmt.Fprintf(&b, "   User Message: %s\n", record.UserMessage)
		if record.SuggestedFix != nil && *record.SuggestedFix != "" {
			fmt.Fprintf(&b, "   Suggested Fix: %s\n", *record.SuggestedFix)
		}
		fmt.Fprintf(&b, "   Timestamp: %s\n", record.Timestamp.Format(time.RFC3339Nano))
	}

	b.WriteString("\n" + blockDivider + "\n")
	b.WriteString("DEBUGGING INSTRUCTIONS FOR AI AGENTS\n")
	b.WriteString(blockDivider + "\n")
	b.WriteString("\n1. Review the recent errors above to identify patterns\n")
	b.WriteString("2. Check component-specific error logs in: errors/by_component/\n")
	b.WriteString("3. Review debug snapshots for critical errors in: errors/debug_snapshots/\n")
	b.WriteString("4. Examine the current session log in: logs/current_session.log\n")
	b.WriteString("5. Check relevant source code files based on the component\n")
	b.WriteString("\nComponent to Source File Mapping:\n")
	b.WriteString("  - ai: services/ai_service\n")
	b.WriteString("  - schema: services/schema_service\n")
	b.WriteString("  - file: services/file_service\n")
	b.WriteString("  - template: services/template_service\n")
	b.WriteString("  - latex: services/latex_service\n")
	b.WriteString("  - database: storage layer and migrations\n")
	b.WriteString("  - extraction: services/extraction_service\n")

	b.WriteString("\n" + blockDivider + "\n")
	b.WriteString("END OF ERROR CONTEXT\n")
	b.WriteString(blockDivider + "\n")

	return b.String()
}

// sortedKeys returns map keys in lexical order for deterministic output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
