package server

import (
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Event writes
	eventsCreatedTotal int64
	eventsUpdatedTotal int64
	eventsDeletedTotal int64

	// Sample data inserted by reads of empty collections
	goalsSeededTotal int64
	tasksSeededTotal int64

	// Explicit reset-and-repopulate runs
	reseedTotal         int64
	reseedFailuresTotal int64

	// Snapshot uploads
	snapshotsTotal        int64
	snapshotFailuresTotal int64
	snapshotBytesTotal    int64
	snapshotDurationTotal time.Duration

	// System metrics
	requestsTotal    int64
	requestErrors5xx int64
	requestErrors4xx int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordEventWrite counts a successful event create, update or delete.
func (m *Metrics) RecordEventWrite(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch op {
	case "create":
		m.eventsCreatedTotal++
	case "update":
		m.eventsUpdatedTotal++
	case "delete":
		m.eventsDeletedTotal++
	}
}

// RecordSampleSeed counts sample data inserted on read of an empty collection.
func (m *Metrics) RecordSampleSeed(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch collection {
	case "goals":
		m.goalsSeededTotal++
	case "tasks":
		m.tasksSeededTotal++
	}
}

// RecordReseed counts a run of the reset endpoint.
func (m *Metrics) RecordReseed(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reseedTotal++
	if !success {
		m.reseedFailuresTotal++
	}
}

// RecordSnapshot records a snapshot upload attempt.
func (m *Metrics) RecordSnapshot(bytes int64, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.snapshotFailuresTotal++
		return
	}
	m.snapshotsTotal++
	m.snapshotBytesTotal += bytes
	m.snapshotDurationTotal += duration
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		EventsCreatedTotal:    m.eventsCreatedTotal,
		EventsUpdatedTotal:    m.eventsUpdatedTotal,
		EventsDeletedTotal:    m.eventsDeletedTotal,
		GoalsSeededTotal:      m.goalsSeededTotal,
		TasksSeededTotal:      m.tasksSeededTotal,
		ReseedTotal:           m.reseedTotal,
		ReseedFailuresTotal:   m.reseedFailuresTotal,
		SnapshotsTotal:        m.snapshotsTotal,
		SnapshotFailuresTotal: m.snapshotFailuresTotal,
		SnapshotBytesTotal:    m.snapshotBytesTotal,
		SnapshotAvgDurationMs: avgDuration(m.snapshotDurationTotal, m.snapshotsTotal),
		RequestsTotal:         m.requestsTotal,
		RequestErrors5xx:      m.requestErrors5xx,
		RequestErrors4xx:      m.requestErrors4xx,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsCreatedTotal int64 `json:"events_created_total"`
	EventsUpdatedTotal int64 `json:"events_updated_total"`
	EventsDeletedTotal int64 `json:"events_deleted_total"`

	GoalsSeededTotal int64 `json:"goals_seeded_total"`
	TasksSeededTotal int64 `json:"tasks_seeded_total"`

	ReseedTotal         int64 `json:"reseed_total"`
	ReseedFailuresTotal int64 `json:"reseed_failures_total"`

	SnapshotsTotal        int64   `json:"snapshots_total"`
	SnapshotFailuresTotal int64   `json:"snapshot_failures_total"`
	SnapshotBytesTotal    int64   `json:"snapshot_bytes_total"`
	SnapshotAvgDurationMs float64 `json:"snapshot_avg_duration_ms"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
}

func avgDuration(total time.Duration, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(count)
}
