package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "portal_sg_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks catalog and session cache hits/misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_sg_cache_hits_total",
			Help: "Number of cache lookups by outcome",
		},
		[]string{"cache", "result"},
	)

	// RemoteAPICalls tracks calls to the Secretaría API
	RemoteAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_sg_remote_api_calls_total",
			Help: "Number of calls to the remote Secretaría API",
		},
		[]string{"operation", "status"},
	)

	// RemoteAPIDuration tracks remote API latency
	RemoteAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_sg_remote_api_duration_seconds",
			Help:    "Duration of remote API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// WizardStepSaves tracks form wizard saves
	WizardStepSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_sg_wizard_step_saves_total",
			Help: "Number of wizard step saves",
		},
		[]string{"step", "status"},
	)

	// RequirementActions tracks upload/download/review actions
	RequirementActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_sg_requirement_actions_total",
			Help: "Number of requirement actions",
		},
		[]string{"action", "status"},
	)

	// AuditEvents tracks audit log delivery
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_sg_audit_events_total",
			Help: "Number of audit events by outcome",
		},
		[]string{"status"},
	)

	// ActiveSessions tracks sessions created minus sessions closed by this instance
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_sg_active_sessions",
			Help: "Number of sessions opened on this instance and not yet closed",
		},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_sg_active_connections",
			Help: "Number of active connections",
		},
	)
)
