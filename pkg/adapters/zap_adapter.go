package adapters

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/errlog"
)

// ErrorCore is a zapcore.Core that turns error-level zap entries into
// application errors. Tee it with an application's existing core so
// every logged error also lands in the classified views.
type ErrorCore struct {
	appLogger *errlog.AppLogger
	fields    []zapcore.Field
}

// NewErrorCore creates a core backed by the given logger
func NewErrorCore(appLogger *errlog.AppLogger) zapcore.Core {
	return &ErrorCore{appLogger: appLogger}
}

// Enabled reports whether the core handles the given level
func (ec *ErrorCore) Enabled(level zapcore.Level) bool {
	return level >= zapcore.ErrorLevel
}

// With attaches structured context to the core
func (ec *ErrorCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(ec.fields)+len(fields))
	combined = append(combined, ec.fields...)
	combined = append(combined, fields...)

	return &ErrorCore{
		appLogger: ec.appLogger,
		fields:    combined,
	}
}

// Check determines whether the entry should be logged
func (ec *ErrorCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ec.Enabled(entry.Level) {
		return checked.AddCore(entry, ec)
	}
	return checked
}

// Write converts the entry into an application error and logs it
func (ec *ErrorCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	severity := apperror.SeverityError
	if entry.Level >= zapcore.DPanicLevel {
		severity = apperror.SeverityCritical
	}

	data := make(map[string]interface{}, len(ec.fields)+len(fields))
	for _, field := range append(append([]zapcore.Field{}, ec.fields...), fields...) {
		data[field.Key] = fieldValue(field)
	}

	opts := []apperror.Option{apperror.WithSeverity(severity)}
	opts = append(opts, optionsFromFields(data)...)

	ec.appLogger.LogError(apperror.New(entry.Message, opts...))

	return nil
}

// Sync is a no-op; the underlying logger flushes on every write
func (ec *ErrorCore) Sync() error {
	return nil
}

// fieldValue extracts a usable value from a zap field
func fieldValue(field zapcore.Field) interface{} {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return field.Integer
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return field.Integer
	case zapcore.BoolType:
		return field.Integer == 1
	case zapcore.ErrorType:
		return field.Interface
	default:
		if field.Interface != nil {
			return field.Interface
		}
		return field.String
	}
}

// NewZapLogger builds a zap logger that writes through the error core
func NewZapLogger(appLogger *errlog.AppLogger) *zap.Logger {
	return zap.New(NewErrorCore(appLogger))
}
