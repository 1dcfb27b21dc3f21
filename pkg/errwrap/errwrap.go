// Package errwrap provides reusable run-and-wrap helpers around the error
// logger: execute a unit of work, classify any failure, log it, and either
// propagate or swallow it per the caller's policy.
package errwrap

import (
	"errors"
	"fmt"

	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/errlog"
)

// Policy supplies the classification defaults applied when a plain error is
// wrapped, and controls whether the failure propagates to the caller.
type Policy struct {
	Component   apperror.Component
	Severity    apperror.Severity
	Category    apperror.Category
	UserMessage string

	// Propagate returns the (wrapped) error to the caller when true;
	// otherwise the failure is logged and swallowed.
	Propagate bool
}

// DefaultPolicy returns a propagating policy for the given component with
// error severity and the system_error category.
func DefaultPolicy(component apperror.Component) Policy {
	return Policy{
		Component: component,
		Severity:  apperror.SeverityError,
		Category:  apperror.CategorySystemError,
		Propagate: true,
	}
}

// Run executes fn and handles any failure per the policy. An error that is
// already an *apperror.AppError is logged unchanged; anything else is
// wrapped with the policy's classification, preserving the original cause.
func Run(logger *errlog.AppLogger, policy Policy, operation string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		logger.LogError(appErr)
		if policy.Propagate {
			return appErr
		}
		return nil
	}

	wrapped := Wrap(err, policy, operation)
	logger.LogError(wrapped)
	if policy.Propagate {
		return wrapped
	}
	return nil
}

// Wrap converts a plain error into an AppError using the policy's
// classification without logging it.
func Wrap(err error, policy Policy, operation string) *apperror.AppError {
	severity := policy.Severity
	if severity == "" {
		severity = apperror.SeverityError
	}
	component := policy.Component
	if component == "" {
		component = apperror.ComponentSystem
	}
	category := policy.Category
	if category == "" {
		category = apperror.CategorySystemError
	}

	opts := []apperror.Option{
		apperror.WithSeverity(severity),
		apperror.WithComponent(component),
		apperror.WithCategory(category),
		apperror.WithCause(err),
	}
	if policy.UserMessage != "" {
		opts = append(opts, apperror.WithUserMessage(policy.UserMessage))
	}

	return apperror.New(fmt.Sprintf("Error during %s: %v", operation, err), opts...)
}

// LogAndReturn logs an already-constructed AppError and hands it back, for
// call sites that both record and propagate in one step.
func LogAndReturn(logger *errlog.AppLogger, e *apperror.AppError) *apperror.AppError {
	logger.LogError(e)
	return e
}

// TryOr executes fn, logging and swallowing any failure. It reports whether
// fn succeeded, so callers can substitute a default value on failure.
func TryOr(logger *errlog.AppLogger, component apperror.Component, operation string, fn func() error) bool {
	err := fn()
	if err == nil {
		return true
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		logger.LogError(appErr)
		return false
	}

	if operation == "" {
		operation = "executing operation"
	}
	logger.LogError(Wrap(err, DefaultPolicy(component), operation))
	return false
}
