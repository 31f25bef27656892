package intake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var completions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_intake_completions_total",
	Help: "Number of finished report forms by result",
}, []string{"result"})

var rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_intake_rejected_inputs_total",
	Help: "Number of inputs rejected with a re-prompt by step",
}, []string{"state"})

var mediaBatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_intake_media_batches_total",
	Help: "Number of media batches by outcome",
}, []string{"outcome"})

var archiveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "report_service_intake_archive_failures_total",
	Help: "Number of reports stored without an archive copy of their media",
})
