// prometheus.go - Prometheus metrics exporter
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

var serverStartTime = time.Now()

// PrometheusMetricsHandler exports the global metrics in the Prometheus text
// exposition format.
func PrometheusMetricsHandler(build BuildInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := GetMetrics().Snapshot()

		var out strings.Builder

		writeMetric(&out, "calendar_info", "gauge", "Application version info",
			fmt.Sprintf("calendar_info{version=\"%s\",commit=\"%s\"} 1",
				prometheusLabel(build.Version), prometheusLabel(build.Commit)))

		writeMetric(&out, "calendar_requests_total", "counter", "Total number of HTTP requests",
			fmt.Sprintf("calendar_requests_total %d", snapshot.RequestsTotal))
		writeMetric(&out, "calendar_request_errors_total", "counter", "HTTP responses with an error status",
			fmt.Sprintf("calendar_request_errors_total{class=\"4xx\"} %d", snapshot.RequestErrors4xx),
			fmt.Sprintf("calendar_request_errors_total{class=\"5xx\"} %d", snapshot.RequestErrors5xx))

		writeMetric(&out, "calendar_event_writes_total", "counter", "Successful event writes by operation",
			fmt.Sprintf("calendar_event_writes_total{op=\"create\"} %d", snapshot.EventsCreatedTotal),
			fmt.Sprintf("calendar_event_writes_total{op=\"update\"} %d", snapshot.EventsUpdatedTotal),
			fmt.Sprintf("calendar_event_writes_total{op=\"delete\"} %d", snapshot.EventsDeletedTotal))

		writeMetric(&out, "calendar_sample_seeds_total", "counter", "Sample data inserted on read of an empty collection",
			fmt.Sprintf("calendar_sample_seeds_total{collection=\"goals\"} %d", snapshot.GoalsSeededTotal),
			fmt.Sprintf("calendar_sample_seeds_total{collection=\"tasks\"} %d", snapshot.TasksSeededTotal))

		writeMetric(&out, "calendar_reseed_total", "counter", "Runs of the reset and reseed endpoint",
			fmt.Sprintf("calendar_reseed_total %d", snapshot.ReseedTotal))
		writeMetric(&out, "calendar_reseed_failures_total", "counter", "Failed runs of the reset and reseed endpoint",
			fmt.Sprintf("calendar_reseed_failures_total %d", snapshot.ReseedFailuresTotal))

		writeMetric(&out, "calendar_snapshots_total", "counter", "Snapshots uploaded to object storage",
			fmt.Sprintf("calendar_snapshots_total %d", snapshot.SnapshotsTotal))
		writeMetric(&out, "calendar_snapshot_failures_total", "counter", "Snapshot attempts that failed",
			fmt.Sprintf("calendar_snapshot_failures_total %d", snapshot.SnapshotFailuresTotal))
		writeMetric(&out, "calendar_snapshot_bytes_total", "counter", "Bytes uploaded by snapshots",
			fmt.Sprintf("calendar_snapshot_bytes_total %d", snapshot.SnapshotBytesTotal))

		writeMetric(&out, "calendar_uptime_seconds", "counter", "Application uptime in seconds",
			fmt.Sprintf("calendar_uptime_seconds %.0f", time.Since(serverStartTime).Seconds()))

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out.String()))
	}
}

func writeMetric(out *strings.Builder, name, kind, help string, samples ...string) {
	fmt.Fprintf(out, "# HELP %s %s\n", name, help)
	fmt.Fprintf(out, "# TYPE %s %s\n", name, kind)
	for _, s := range samples {
		out.WriteString(s)
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
}

// Helper function to format label safely for Prometheus
func prometheusLabel(value string) string {
	// Escape quotes and backslashes
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}
