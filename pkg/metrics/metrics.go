package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "inertiacms"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelSource  = "source"
	metricLabelResult  = "result"
	metricLabelSite    = "site"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// ServiceRequestCounter count the number of requests for each admin route
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each admin route
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to execute an admin route and marshal its reponses",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ContentRequestCounter count requests seen by the inertia middleware
	ContentRequestCounter = newCounterVec(
		"content_request_count",
		"Number of requests seen by the middleware by result (rendered, passthrough, error)",
		metricLabelResult,
	)
	// RenderDuration observe the duration of resolving, normalizing and rendering a record
	RenderDuration = newSummaryVec(
		"render_duration_seconds",
		"Seconds to resolve, normalize and render a record",
		metricLabelResult,
	)
	// ReferenceLookupCounter count uuid reference lookups
	ReferenceLookupCounter = newCounterVec(
		"reference_lookup_count",
		"Number of uuid references looked up while normalizing props",
		metricLabelResult,
	)
	// UpdatesCompletedCounter count the number of successful updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of updates that were successfully completed",
	)
	// UpdatesFailedCounter count the number of updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of updates that failed due to an error",
	)
	// UpdateDuration observe the duration of each repo.update() call
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each successful repo.update() call",
	)
	// RecordsGauge number of records loaded per site
	RecordsGauge = newGaugeVec(
		"records_total",
		"Number of records currently loaded for a site",
		metricLabelSite,
	)
	// HistoryPersistFailedCounter count the number of failed attempts to persist the content history
	HistoryPersistFailedCounter = newCounterVec(
		"history_persist_failed_count",
		"Number of failures to store the content history",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
