// Package metrics declares the prometheus collectors of the client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resto_ledger"

// Label names
const (
	LabelResource  = "resource"
	LabelMethod    = "method"
	LabelStatus    = "status"
	LabelRoute     = "route"
	LabelWorkflow  = "workflow"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEvent     = "event"
)

// Remote store metrics
var (
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Requests sent to the remote JSON store",
		},
		[]string{LabelResource, LabelMethod, LabelStatus},
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of requests to the remote JSON store",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelResource, LabelMethod},
	)
)

// Front API metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of front API requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Front API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of front API requests being served",
		},
	)
)

// Business metrics
var (
	WorkflowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_operations_total",
			Help:      "Recording workflow operations by outcome",
		},
		[]string{LabelWorkflow, LabelOperation, LabelOutcome},
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session transitions (login, logout, expired)",
		},
		[]string{LabelEvent},
	)
)
