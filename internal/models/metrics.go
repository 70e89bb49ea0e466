package models

import "time"

// SystemMetrics is a point-in-time snapshot of runtime counters exposed on
// the admin analytics surface.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RecordsCreated           uint64    `json:"records_created"`
	ReportsGenerated         uint64    `json:"reports_generated"`
	ReportFailures           uint64    `json:"report_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
