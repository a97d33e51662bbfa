package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Audit lifecycle metrics
	AuditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliad_audits_total",
		Help: "Total number of audits started",
	})

	AuditsByStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliad_audits_by_status",
		Help: "Number of completed audits by report status",
	}, []string{"status"})

	AuditDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compliad_audit_duration_seconds",
		Help:    "Time taken to complete a single audit",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	ViolationsBySeverity = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliad_violations_by_severity",
		Help: "Number of violations reported by severity level",
	}, []string{"severity"})

	// Extraction metrics
	ExtractionAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliad_extraction_attempts_total",
		Help: "Number of extraction strategy attempts by method",
	}, []string{"method"})

	ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliad_extraction_failures_total",
		Help: "Number of failed extraction strategy attempts by method",
	}, []string{"method"})

	// Reasoner metrics
	ReasonerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliad_reasoner_calls_total",
		Help: "Number of reasoner calls by model and outcome",
	}, []string{"model", "outcome"})

	ReasonerFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliad_reasoner_fallbacks_total",
		Help: "Total number of reasoner calls answered by the fallback model",
	})

	// Persistence metrics
	PersistenceFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliad_persistence_failures_total",
		Help: "Total number of audit records that could not be saved",
	})
)
