package errwrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// Validation helpers return a classified error instead of failing hard; a
// nil result means the check passed. Callers decide whether to log the
// result, propagate it, or both.

// ValidateNotNil checks that value is present.
func ValidateNotNil(value interface{}, fieldName string, component apperror.Component) *apperror.AppError {
	if value != nil {
		return nil
	}
	return apperror.New(
		fmt.Sprintf("%s cannot be nil", fieldName),
		apperror.WithComponent(component),
		apperror.WithCategory(apperror.CategoryDataMissing),
		apperror.WithUserMessage(fmt.Sprintf("Required field '%s' is missing", fieldName)),
	)
}

// ValidateNonEmpty checks that a string value is not blank.
func ValidateNonEmpty(value, fieldName string, component apperror.Component) *apperror.AppError {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return apperror.New(
		fmt.Sprintf("%s cannot be empty", fieldName),
		apperror.WithComponent(component),
		apperror.WithCategory(apperror.CategoryValidationFailed),
		apperror.WithUserMessage(fmt.Sprintf("Required field '%s' is missing", fieldName)),
	)
}

// ValidateFileExists checks that a file exists at the given path.
func ValidateFileExists(path string, component apperror.Component) *apperror.AppError {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return apperror.New(
		fmt.Sprintf("File not found: %s", path),
		apperror.WithComponent(component),
		apperror.WithCategory(apperror.CategoryFileNotFound),
		apperror.WithUserMessage(fmt.Sprintf("File not found: %s", filepath.Base(path))),
	)
}
