package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	captureNamespace = "capture"

	scanOutcomeLabel = "outcome"
	scanReasonLabel  = "reason"
)

var scanRequestsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: captureNamespace,
		Name:      "scan_requests_total",
		Help:      "Total number of scan submissions partitioned by outcome and rejection reason.",
	},
	[]string{scanOutcomeLabel, scanReasonLabel},
)

var jobsCompletedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: captureNamespace,
		Name:      "jobs_completed_total",
		Help:      "Total number of jobs driven to the completed state by scans.",
	},
)

// IncreaseScanRequestsTotal counts one scan submission by outcome. The reason
// label is empty for accepted scans.
func IncreaseScanRequestsTotal(outcome, reason string) {
	scanRequestsTotalMetric.WithLabelValues(outcome, reason).Inc()
}

// IncreaseJobsCompletedTotal counts one job completion.
func IncreaseJobsCompletedTotal() {
	jobsCompletedTotalMetric.Inc()
}

func init() {
	prometheus.MustRegister(scanRequestsTotalMetric)
	prometheus.MustRegister(jobsCompletedTotalMetric)
}
