package errlog

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/kerlexov/errorlog/pkg/metrics"
)

var (
	defaultMu     sync.Mutex
	defaultLogger *AppLogger
)

// Default returns the process-wide logger, creating it on first use. The
// root directory is taken from ERRORLOG_ROOT, falling back to the working
// directory, then to a subdirectory of the system temp directory. Logging
// must never crash the caller, so construction failures degrade rather than
// propagate.
func Default() *AppLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger != nil {
		return defaultLogger
	}

	root := os.Getenv("ERRORLOG_ROOT")
	if root == "" {
		root, _ = os.Getwd()
	}

	logger, err := New(root, Options{})
	if err != nil {
		logger, err = New(filepath.Join(os.TempDir(), "errorlog"), Options{})
	}
	if err != nil {
		// Last resort: a logger whose view writes fail silently. LogError
		// swallows per-view failures, so callers still never see an error.
		logger = &AppLogger{
			root:              root,
			logsDir:           filepath.Join(root, "logs"),
			errorsDir:         filepath.Join(root, "errors"),
			errorsByComponent: make(map[string]int),
			errorsBySeverity:  make(map[string]int),
			recentCount:       defaultRecentCount,
			snapshotTail:      defaultSnapshotTail,
		}
		logger.metrics = metrics.NewMetrics()
		logger.session = zap.NewNop()
		defaultLogger = logger
		return defaultLogger
	}

	defaultLogger = logger
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Intended for startup wiring;
// the previous logger, if any, is not closed.
func SetDefault(l *AppLogger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
