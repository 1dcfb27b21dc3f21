package adapters

import (
	"github.com/sirupsen/logrus"

	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/errlog"
)

// LogrusHook forwards error-level logrus entries into the error log so
// applications already instrumented with logrus pick up tracking codes
// and the file views without code changes.
type LogrusHook struct {
	appLogger *errlog.AppLogger
}

// NewLogrusHook creates a hook backed by the given logger
func NewLogrusHook(appLogger *errlog.AppLogger) *LogrusHook {
	return &LogrusHook{appLogger: appLogger}
}

// Levels returns the levels the hook fires for
func (hook *LogrusHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

// Fire converts the entry into an application error and logs it
func (hook *LogrusHook) Fire(entry *logrus.Entry) error {
	severity := apperror.SeverityError
	if entry.Level == logrus.FatalLevel || entry.Level == logrus.PanicLevel {
		severity = apperror.SeverityCritical
	}

	opts := []apperror.Option{apperror.WithSeverity(severity)}
	opts = append(opts, optionsFromFields(entry.Data)...)

	hook.appLogger.LogError(apperror.New(entry.Message, opts...))

	return nil
}

// InstallLogrusHook registers the hook on the standard logrus logger
func InstallLogrusHook(appLogger *errlog.AppLogger) {
	logrus.AddHook(NewLogrusHook(appLogger))
}

// optionsFromFields maps well-known field keys onto the error taxonomy
// and collects the rest as context data
func optionsFromFields(data map[string]interface{}) []apperror.Option {
	var opts []apperror.Option
	ctx := &apperror.Context{}
	hasCtx := false

	for key, value := range data {
		switch key {
		case "component":
			if s, ok := value.(string); ok {
				opts = append(opts, apperror.WithComponent(apperror.Component(s)))
				continue
			}
		case "category":
			if s, ok := value.(string); ok {
				opts = append(opts, apperror.WithCategory(apperror.Category(s)))
				continue
			}
		case "error":
			if err, ok := value.(error); ok {
				opts = append(opts, apperror.WithCause(err))
				continue
			}
		case "request_id":
			if s, ok := value.(string); ok {
				ctx.RequestID = s
				hasCtx = true
				continue
			}
		}
		ctx.WithData(key, value)
		hasCtx = true
	}

	if hasCtx {
		opts = append(opts, apperror.WithContext(ctx))
	}

	return opts
}
