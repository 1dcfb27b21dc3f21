package storage

import (
	"context"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// ErrorFilter represents filtering criteria for error queries
type ErrorFilter struct {
	Component       string    `json:"component,omitempty"`
	Severity        string    `json:"severity,omitempty"`
	Category        string    `json:"category,omitempty"`
	Code            string    `json:"code,omitempty"`
	StartTime       time.Time `json:"start_time,omitempty"`
	EndTime         time.Time `json:"end_time,omitempty"`
	MessageContains string    `json:"message_contains,omitempty"`
	Limit           int       `json:"limit,omitempty"`
	Offset          int       `json:"offset,omitempty"`
}

// ErrorResult represents the result of an error query
type ErrorResult struct {
	Errors     []apperror.Record `json:"errors"`
	TotalCount int               `json:"total_count"`
	HasMore    bool              `json:"has_more"`
}

// Counts holds the running aggregates kept by the store
type Counts struct {
	Total       int            `json:"total"`
	ByComponent map[string]int `json:"by_component"`
	BySeverity  map[string]int `json:"by_severity"`
}

// HealthStatus represents the health status of the storage system
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// ErrorStore defines the interface for the queryable error index that sits
// alongside the file-based views
type ErrorStore interface {
	// Store persists a single error record
	Store(ctx context.Context, record apperror.Record) error

	// Query retrieves error records based on filter criteria
	Query(ctx context.Context, filter ErrorFilter) (*ErrorResult, error)

	// GetByCode retrieves the most recent record with the given tracking code
	GetByCode(ctx context.Context, code string) (*apperror.Record, error)

	// Counts returns aggregate totals by component and severity
	Counts(ctx context.Context) (*Counts, error)

	// HealthCheck returns the health status of the storage system
	HealthCheck(ctx context.Context) HealthStatus

	// Close closes the storage connection
	Close() error
}
