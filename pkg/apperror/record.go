package apperror

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record is the serializable projection of an AppError shared by every
// persisted view (per-date files, summary, snapshots, storage). Stack traces
// are present only for critical and error severities.
type Record struct {
	Code         string    `json:"error_code" validate:"required,error_code"`
	Message      string    `json:"message" validate:"required,error_message"`
	UserMessage  string    `json:"user_message" validate:"required"`
	Severity     string    `json:"severity" validate:"required,oneof=critical error warning info"`
	Component    string    `json:"component" validate:"required,component_name"`
	Category     string    `json:"category" validate:"required"`
	Timestamp    time.Time `json:"timestamp" validate:"required"`
	Context      *Context  `json:"context"`
	SuggestedFix *string   `json:"suggested_fix"`
	StackTrace   *string   `json:"stack_trace"`
	Variant      string    `json:"variant,omitempty"`
	Detail       *Detail   `json:"detail,omitempty"`
}

var (
	codePattern      = regexp.MustCompile(`^[A-Z0-9_]+-[0-9A-F]{8}$`)
	componentPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	// recordValidator is shared by every Validate call; validator.Validate
	// is safe for concurrent use once the custom validations are registered.
	recordValidator = newRecordValidator()
)

func newRecordValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterValidation("error_code", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})

	validate.RegisterValidation("component_name", func(fl validator.FieldLevel) bool {
		return componentPattern.MatchString(fl.Field().String())
	})

	validate.RegisterValidation("error_message", func(fl validator.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) > 0
	})

	return validate
}

// Record projects the error into its persisted form, applying the stack
// trace redaction policy for warning and info severities.
func (e *AppError) Record() Record {
	r := Record{
		Code:        e.Code,
		Message:     e.Message,
		UserMessage: e.UserMessage,
		Severity:    string(e.Severity),
		Component:   string(e.Component),
		Category:    string(e.Category),
		Timestamp:   e.Timestamp,
		Context:     e.Context,
	}

	if e.SuggestedFix != "" {
		fix := e.SuggestedFix
		r.SuggestedFix = &fix
	}

	if e.StackTrace != "" && e.Severity.IncludesStackTrace() {
		trace := e.StackTrace
		r.StackTrace = &trace
	}

	if e.Variant != "" && e.Variant != VariantGeneric {
		r.Variant = string(e.Variant)
		detail := e.Detail
		r.Detail = &detail
	}

	return r
}

// Validate validates the record using struct tags
func (r *Record) Validate() error {
	return recordValidator.Struct(r)
}

// ToJSON converts the record to JSON bytes
func (r *Record) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// RecordFromJSON creates a record from JSON bytes
func RecordFromJSON(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
