package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// RecordValidator provides comprehensive validation for error records
// arriving from outside the process (e.g. the ingestion endpoint).
type RecordValidator struct {
	validator *validator.Validate
}

// NewRecordValidator creates a new record validator
func NewRecordValidator() *RecordValidator {
	v := validator.New()

	v.RegisterValidation("error_code", validateErrorCode)
	v.RegisterValidation("component_name", validateComponentName)
	v.RegisterValidation("error_message", validateErrorMessage)

	return &RecordValidator{
		validator: v,
	}
}

// ValidateRecord validates a single error record with detailed error reporting
func (rv *RecordValidator) ValidateRecord(record *apperror.Record) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]ValidationError, 0),
	}

	// Basic struct validation
	if err := rv.validator.Struct(record); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldError.Field(),
					Value:   fmt.Sprintf("%v", fieldError.Value()),
					Message: getValidationMessage(fieldError),
				})
			}
		}
	}

	// Custom business logic validation
	rv.validateBusinessRules(record, result)

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidationResult represents the result of validating a single record
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// validateBusinessRules applies custom business logic validation
func (rv *RecordValidator) validateBusinessRules(record *apperror.Record, result *ValidationResult) {
	// Validate timestamp is not too far in the future
	if record.Timestamp.After(time.Now().Add(5 * time.Minute)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "timestamp",
			Value:   record.Timestamp.String(),
			Message: "Timestamp cannot be more than 5 minutes in the future",
		})
	}

	// Validate timestamp is not too old (more than 1 year)
	if !record.Timestamp.IsZero() && record.Timestamp.Before(time.Now().Add(-365*24*time.Hour)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "timestamp",
			Value:   record.Timestamp.String(),
			Message: "Timestamp cannot be more than 1 year in the past",
		})
	}

	// Additional context data should stay small
	if record.Context != nil && len(record.Context.AdditionalData) > 50 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "context.additional_data",
			Value:   fmt.Sprintf("%d keys", len(record.Context.AdditionalData)),
			Message: "Additional context data cannot exceed 50 keys",
		})
	}

	// Stack traces are redacted for low severities; reject records that leak them
	if record.StackTrace != nil && (record.Severity == string(apperror.SeverityWarning) || record.Severity == string(apperror.SeverityInfo)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "stack_trace",
			Value:   "present",
			Message: "Stack traces are only carried for critical and error severities",
		})
	}
}

// validateErrorCode checks the COMPONENT-XXXXXXXX tracking code format
func validateErrorCode(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[A-Z0-9_]+-[0-9A-F]{8}$`, fl.Field().String())
	return matched
}

// validateComponentName checks the lower_snake_case component format
func validateComponentName(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[a-z][a-z0-9_]*$`, fl.Field().String())
	return matched
}

// validateErrorMessage checks that the message is not blank
func validateErrorMessage(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) > 0
}

// getValidationMessage returns a human-readable message for a field error
func getValidationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldError.Field(), fieldError.Param())
	case "error_code":
		return fmt.Sprintf("%s must match the COMPONENT-XXXXXXXX format", fieldError.Field())
	case "component_name":
		return fmt.Sprintf("%s must be lower snake case", fieldError.Field())
	case "error_message":
		return fmt.Sprintf("%s cannot be blank", fieldError.Field())
	case "max":
		return fmt.Sprintf("%s exceeds the maximum length of %s", fieldError.Field(), fieldError.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", fieldError.Field(), fieldError.Tag())
	}
}
