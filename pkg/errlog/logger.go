// Package errlog implements the multi-destination error logger: a single
// ingestion point that fans each error out into per-component, per-severity,
// and per-date views, a cumulative summary, debug snapshots for critical
// errors, and a regenerated AI-debugging digest.
package errlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/metrics"
	"github.com/kerlexov/errorlog/pkg/storage"
)

const (
	sessionLogName = "current_session.log"
	masterLogName  = "master_error_log.log"
	summaryName    = "error_summary.json"
	digestName     = "Auto-Error_AI-Context.txt"

	defaultRecentCount  = 10
	defaultSnapshotTail = 50
)

// Options configure an AppLogger beyond its root directory.
type Options struct {
	// ConsoleLevel is the minimum severity echoed to stderr. Defaults to info.
	ConsoleLevel zapcore.Level

	// DisableConsole suppresses the stderr sink entirely.
	DisableConsole bool

	// RecentCount is the number of recent errors listed in the digest.
	// Defaults to 10.
	RecentCount int

	// SnapshotTail is the number of trailing session log lines captured in a
	// debug snapshot. Defaults to 50.
	SnapshotTail int

	// Store, when set, also persists every record to a queryable index.
	Store storage.ErrorStore

	// Search, when set, also indexes every record for full-text search.
	Search *storage.SearchService

	// Metrics receives pipeline health counters. A fresh instance is created
	// when nil.
	Metrics *metrics.Metrics
}

// AppLogger fans every logged error out into the on-disk views and keeps the
// running aggregates consistent. One instance owns its directory tree; use
// Default for the process-wide instance.
type AppLogger struct {
	root      string
	logsDir   string
	errorsDir string

	session     *zap.Logger
	sessionFile *os.File
	masterFile  *os.File

	mu                sync.Mutex
	totalErrors       int
	errorsByComponent map[string]int
	errorsBySeverity  map[string]int

	metrics      *metrics.Metrics
	store        storage.ErrorStore
	search       *storage.SearchService
	recentCount  int
	snapshotTail int
}

// New creates an AppLogger rooted at the given directory, idempotently
// creating the full subdirectory tree.
func New(root string, opts Options) (*AppLogger, error) {
	logsDir := filepath.Join(root, "logs")
	errorsDir := filepath.Join(root, "errors")

	directories := []string{
		logsDir,
		errorsDir,
		filepath.Join(errorsDir, "by_date"),
		filepath.Join(errorsDir, "by_component"),
		filepath.Join(errorsDir, "by_severity"),
		filepath.Join(errorsDir, "error_patterns"),
		filepath.Join(errorsDir, "debug_snapshots"),
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	sessionFile, err := os.OpenFile(filepath.Join(logsDir, sessionLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	masterFile, err := os.OpenFile(filepath.Join(errorsDir, masterLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		sessionFile.Close()
		return nil, fmt.Errorf("failed to open master error log: %w", err)
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	if opts.RecentCount <= 0 {
		opts.RecentCount = defaultRecentCount
	}
	if opts.SnapshotTail <= 0 {
		opts.SnapshotTail = defaultSnapshotTail
	}

	l := &AppLogger{
		root:              root,
		logsDir:           logsDir,
		errorsDir:         errorsDir,
		sessionFile:       sessionFile,
		masterFile:        masterFile,
		errorsByComponent: make(map[string]int),
		errorsBySeverity:  make(map[string]int),
		metrics:           opts.Metrics,
		store:             opts.Store,
		search:            opts.Search,
		recentCount:       opts.RecentCount,
		snapshotTail:      opts.SnapshotTail,
	}
	l.session = buildSessionLogger(sessionFile, masterFile, opts)

	return l, nil
}

// buildSessionLogger assembles the zap tee for the session trace, the stderr
// console, and the master error log.
func buildSessionLogger(sessionFile, masterFile *os.File, opts Options) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		ConsoleSeparator: " - ",
	}
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(sessionFile), zapcore.DebugLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(masterFile), zapcore.ErrorLevel),
	}
	if !opts.DisableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), opts.ConsoleLevel))
	}

	return zap.New(zapcore.NewTee(cores...)).Named("errorlog")
}

// zapLevel maps an error severity to its session log level. Critical maps to
// zap's error level; the severity field keeps the distinction visible.
func zapLevel(s apperror.Severity) zapcore.Level {
	switch s {
	case apperror.SeverityCritical, apperror.SeverityError:
		return zapcore.ErrorLevel
	case apperror.SeverityWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// LogError records an error across every configured view, in a fixed order:
// counters, session/master log line, per-component block, per-severity line,
// per-date record, summary overwrite, debug snapshot (critical only), digest
// regeneration. It never fails: each view is attempted independently, and
// failures are counted and reported once through the session log.
func (l *AppLogger) LogError(e *apperror.AppError) {
	if e == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	component := string(e.Component)
	severity := string(e.Severity)

	l.totalErrors++
	l.errorsByComponent[component]++
	l.errorsBySeverity[severity]++
	l.metrics.IncrementErrorsLogged()

	fields := []zap.Field{}
	if e.Severity == apperror.SeverityCritical {
		fields = append(fields, zap.String("severity", severity))
	}
	l.session.Log(zapLevel(e.Severity), fmt.Sprintf("[%s] %s", e.Code, e.Message), fields...)

	record := e.Record()

	var degraded []string
	attempt := func(view string, err error) {
		if err != nil {
			degraded = append(degraded, fmt.Sprintf("%s: %v", view, err))
			l.metrics.IncrementViewWriteFailures(view)
		}
	}

	attempt("by_component", l.appendComponentFile(e))
	attempt("by_severity", l.appendSeverityFile(e))
	attempt("by_date", l.appendDateFile(record))
	attempt("summary", l.writeSummaryLocked(record))

	if e.Severity == apperror.SeverityCritical {
		if err := l.writeDebugSnapshot(record); err != nil {
			attempt("debug_snapshot", err)
		} else {
			l.metrics.IncrementSnapshotsWritten()
		}
	}

	if err := l.refreshDigestLocked(); err != nil {
		attempt("digest", err)
	} else {
		l.metrics.IncrementDigestRegenerations()
	}

	if l.store != nil {
		if err := l.store.Store(context.Background(), record); err != nil {
			// A store that owns its search index reports a stale index as
			// ErrIndexDegraded; the row itself landed, so count it against
			// the index rather than the store.
			if errors.Is(err, storage.ErrIndexDegraded) {
				degraded = append(degraded, fmt.Sprintf("search: %v", err))
				l.metrics.IncrementSearchIndexErrors()
			} else {
				degraded = append(degraded, fmt.Sprintf("store: %v", err))
				l.metrics.IncrementStoreErrors()
			}
		}
	}
	if l.search != nil {
		if err := l.search.Index(record); err != nil {
			degraded = append(degraded, fmt.Sprintf("search: %v", err))
			l.metrics.IncrementSearchIndexErrors()
		}
	}

	if len(degraded) > 0 {
		l.session.Warn(fmt.Sprintf("error views degraded: %s", strings.Join(degraded, "; ")))
	}
}

// Totals returns the running aggregates: total errors logged, counts by
// component, and counts by severity.
func (l *AppLogger) Totals() (int, map[string]int, map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byComponent := make(map[string]int, len(l.errorsByComponent))
	for k, v := range l.errorsByComponent {
		byComponent[k] = v
	}
	bySeverity := make(map[string]int, len(l.errorsBySeverity))
	for k, v := range l.errorsBySeverity {
		bySeverity[k] = v
	}
	return l.totalErrors, byComponent, bySeverity
}

// RecentErrors returns up to limit recent error records, scanning per-date
// files newest first.
func (l *AppLogger) RecentErrors(limit int) []apperror.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recentRecordsLocked(limit)
}

// DigestContent returns the current AI-context digest.
func (l *AppLogger) DigestContent() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(l.errorsDir, digestName))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Metrics exposes the pipeline health counters.
func (l *AppLogger) Metrics() *metrics.Metrics {
	return l.metrics
}

// Root returns the directory the logger writes under.
func (l *AppLogger) Root() string {
	return l.root
}

// Debug logs a plain message to the session sinks only.
func (l *AppLogger) Debug(message string) {
	l.metrics.IncrementPlainMessagesLogged()
	l.session.Debug(message)
}

// Info logs a plain message to the session sinks only.
func (l *AppLogger) Info(message string) {
	l.metrics.IncrementPlainMessagesLogged()
	l.session.Info(message)
}

// Warning logs a plain message to the session sinks only.
func (l *AppLogger) Warning(message string) {
	l.metrics.IncrementPlainMessagesLogged()
	l.session.Warn(message)
}

// Error logs a plain message to the session and master sinks only; it does
// not touch counters, views, or the digest.
func (l *AppLogger) Error(message string) {
	l.metrics.IncrementPlainMessagesLogged()
	l.session.Error(message)
}

// Critical logs a plain message to the session and master sinks only.
func (l *AppLogger) Critical(message string) {
	l.metrics.IncrementPlainMessagesLogged()
	l.session.Error(message, zap.String("severity", string(apperror.SeverityCritical)))
}

// Close flushes and closes the session sinks. The fan-out views are written
// unbuffered, so teardown is otherwise a no-op.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.session.Sync()
	if l.sessionFile == nil || l.masterFile == nil {
		return nil
	}
	if err := l.sessionFile.Close(); err != nil {
		l.masterFile.Close()
		return err
	}
	return l.masterFile.Close()
}
