package metrics

import (
	"sync"
	"time"
)

// Metrics holds operational metrics for the error logging pipeline
type Metrics struct {
	mutex               sync.RWMutex
	errorsLogged        int64
	viewWriteFailures   map[string]int64
	snapshotsWritten    int64
	digestRegenerations int64
	storeErrors         int64
	searchIndexErrors   int64
	plainMessagesLogged int64
	lastErrorTime       time.Time
	startTime           time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		viewWriteFailures: make(map[string]int64),
		startTime:         time.Now(),
	}
}

// IncrementErrorsLogged increments the logged errors counter
func (m *Metrics) IncrementErrorsLogged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errorsLogged++
	m.lastErrorTime = time.Now()
}

// IncrementViewWriteFailures increments the write failure counter for a view
func (m *Metrics) IncrementViewWriteFailures(view string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.viewWriteFailures[view]++
}

// IncrementSnapshotsWritten increments the debug snapshots counter
func (m *Metrics) IncrementSnapshotsWritten() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.snapshotsWritten++
}

// IncrementDigestRegenerations increments the digest regeneration counter
func (m *Metrics) IncrementDigestRegenerations() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.digestRegenerations++
}

// IncrementStoreErrors increments the storage errors counter
func (m *Metrics) IncrementStoreErrors() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.storeErrors++
}

// IncrementSearchIndexErrors increments the search indexing errors counter
func (m *Metrics) IncrementSearchIndexErrors() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.searchIndexErrors++
}

// IncrementPlainMessagesLogged increments the plain (non-structured) message counter
func (m *Metrics) IncrementPlainMessagesLogged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.plainMessagesLogged++
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	uptime := time.Since(m.startTime)

	failures := make(map[string]int64, len(m.viewWriteFailures))
	var totalFailures int64
	for view, count := range m.viewWriteFailures {
		failures[view] = count
		totalFailures += count
	}

	return MetricsSnapshot{
		ErrorsLogged:        m.errorsLogged,
		ViewWriteFailures:   failures,
		TotalWriteFailures:  totalFailures,
		SnapshotsWritten:    m.snapshotsWritten,
		DigestRegenerations: m.digestRegenerations,
		StoreErrors:         m.storeErrors,
		SearchIndexErrors:   m.searchIndexErrors,
		PlainMessagesLogged: m.plainMessagesLogged,
		LastErrorTime:       m.lastErrorTime,
		StartTime:           m.startTime,
		UptimeSeconds:       int64(uptime.Seconds()),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	ErrorsLogged        int64            `json:"errors_logged"`
	ViewWriteFailures   map[string]int64 `json:"view_write_failures"`
	TotalWriteFailures  int64            `json:"total_write_failures"`
	SnapshotsWritten    int64            `json:"snapshots_written"`
	DigestRegenerations int64            `json:"digest_regenerations"`
	StoreErrors         int64            `json:"store_errors"`
	SearchIndexErrors   int64            `json:"search_index_errors"`
	PlainMessagesLogged int64            `json:"plain_messages_logged"`
	LastErrorTime       time.Time        `json:"last_error_time"`
	StartTime           time.Time        `json:"start_time"`
	UptimeSeconds       int64            `json:"uptime_seconds"`
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.errorsLogged = 0
	m.viewWriteFailures = make(map[string]int64)
	m.snapshotsWritten = 0
	m.digestRegenerations = 0
	m.storeErrors = 0
	m.searchIndexErrors = 0
	m.plainMessagesLogged = 0
	m.lastErrorTime = time.Time{}
	m.startTime = time.Now()
}
