package storage

import (
	"context"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// RetentionPolicy defines how long error records should be kept
type RetentionPolicy struct {
	// DefaultDays is the default retention period in days
	DefaultDays int `json:"default_days" yaml:"default_days"`

	// BySeverity defines retention periods by severity
	BySeverity map[apperror.Severity]int `json:"by_severity" yaml:"by_severity"`
}

// RetentionService manages error record retention and cleanup
type RetentionService struct {
	store  *SQLiteStore
	policy RetentionPolicy
}

// NewRetentionService creates a new retention service
func NewRetentionService(store *SQLiteStore, policy RetentionPolicy) *RetentionService {
	return &RetentionService{
		store:  store,
		policy: policy,
	}
}

// GetRetentionDate calculates the retention cutoff date for a severity
func (r *RetentionService) GetRetentionDate(severity apperror.Severity) time.Time {
	days := r.policy.DefaultDays

	if severityDays, exists := r.policy.BySeverity[severity]; exists {
		days = severityDays
	}

	if days <= 0 {
		// No retention (keep forever)
		return time.Time{}
	}

	return time.Now().AddDate(0, 0, -days)
}

// CleanupResult holds the outcome of a cleanup run
type CleanupResult struct {
	StartTime         time.Time                 `json:"start_time"`
	EndTime           time.Time                 `json:"end_time"`
	TotalDeleted      int                       `json:"total_deleted"`
	DeletedBySeverity map[apperror.Severity]int `json:"deleted_by_severity"`
	Errors            []string                  `json:"errors,omitempty"`
}

// CleanupExpiredErrors removes records that have exceeded their retention
// period. A failure for one severity does not stop the others.
func (r *RetentionService) CleanupExpiredErrors(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{
		StartTime:         time.Now(),
		DeletedBySeverity: make(map[apperror.Severity]int),
	}

	severities := []apperror.Severity{
		apperror.SeverityCritical,
		apperror.SeverityError,
		apperror.SeverityWarning,
		apperror.SeverityInfo,
	}

	for _, severity := range severities {
		cutoff := r.GetRetentionDate(severity)
		if cutoff.IsZero() {
			continue
		}

		deleted, err := r.store.DeleteOlderThan(ctx, string(severity), cutoff)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		result.DeletedBySeverity[severity] = deleted
		result.TotalDeleted += deleted
	}

	result.EndTime = time.Now()
	return result, nil
}

// StartPeriodicCleanup runs cleanup at the given interval until the context
// is cancelled
func (r *RetentionService) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CleanupExpiredErrors(ctx)
		}
	}
}
