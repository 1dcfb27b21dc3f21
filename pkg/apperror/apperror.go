// Package apperror defines the structured error values used across the
// application: a closed taxonomy of severity, component, and category, plus
// an immutable error record carrying messages, correlation context, a
// greppable tracking code, and a captured stack trace.
package apperror

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppError is the structured application error. It is assembled once at
// construction and not mutated afterwards, with one exception: a handling
// layer may attach correlation context before the error is logged.
type AppError struct {
	Message      string
	UserMessage  string
	Severity     Severity
	Component    Component
	Category     Category
	Context      *Context
	Cause        error
	SuggestedFix string
	Code         string
	Timestamp    time.Time
	StackTrace   string

	// Variant discriminates domain-specific flavors; Detail carries the
	// payload for that variant (zero for VariantGeneric).
	Variant Variant
	Detail  Detail
}

// Option overrides one construction default.
type Option func(*AppError)

// WithSeverity sets the severity.
func WithSeverity(s Severity) Option {
	return func(e *AppError) { e.Severity = s }
}

// WithComponent sets the originating component.
func WithComponent(c Component) Option {
	return func(e *AppError) { e.Component = c }
}

// WithCategory sets the error category.
func WithCategory(c Category) Option {
	return func(e *AppError) { e.Category = c }
}

// WithContext sets the correlation context.
func WithContext(ctx *Context) Option {
	return func(e *AppError) { e.Context = ctx }
}

// WithCause records the wrapped original error.
func WithCause(err error) Option {
	return func(e *AppError) { e.Cause = err }
}

// WithUserMessage overrides the category-derived user-facing message.
func WithUserMessage(msg string) Option {
	return func(e *AppError) { e.UserMessage = msg }
}

// WithSuggestedFix attaches a human hint for resolving the error.
func WithSuggestedFix(fix string) Option {
	return func(e *AppError) { e.SuggestedFix = fix }
}

// WithCode overrides the generated tracking code.
func WithCode(code string) Option {
	return func(e *AppError) { e.Code = code }
}

// New constructs a generic AppError. Defaults: severity error, component
// system, category system_error. Construction never fails.
func New(message string, opts ...Option) *AppError {
	return newVariant(VariantGeneric, message, Detail{}, opts)
}

// newVariant assembles an AppError for the given variant. Variant defaults
// are applied before caller options, so explicit options always win.
func newVariant(v Variant, message string, detail Detail, opts []Option) *AppError {
	e := &AppError{
		Message:   message,
		Severity:  SeverityError,
		Component: ComponentSystem,
		Category:  CategorySystemError,
		Variant:   v,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	if component, category, ok := defaultsFor(v); ok {
		e.Component = component
		if category != "" {
			e.Category = category
		}
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.Context == nil {
		e.Context = &Context{}
	}
	if e.UserMessage == "" {
		e.UserMessage = DefaultUserMessage(e.Category)
	}
	if e.Code == "" {
		e.Code = GenerateCode(e.Component)
	}
	e.StackTrace = captureStack()

	return e
}

// GenerateCode produces a tracking code of the form COMPONENT-XXXXXXXX where
// the suffix is eight uppercase hex characters from a fresh random UUID.
// Codes are stable once assigned. Collisions are possible in principle;
// callers must not rely on global uniqueness.
func GenerateCode(c Component) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%X", strings.ToUpper(string(c)), id[:4])
}

// captureStack grabs the current goroutine stack. Best-effort: an empty
// string is returned rather than an error.
func captureStack() string {
	return string(debug.Stack())
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, strings.ToUpper(string(e.Component)), e.Message)
}

// Unwrap returns the wrapped original error, if any.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// AttachContext sets correlation context on an already-constructed error.
// This is the only permitted post-construction mutation; handling layers use
// it to add request-scoped data before handing the error to the logger.
func (e *AppError) AttachContext(ctx *Context) *AppError {
	e.Context = ctx
	return e
}
