package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_dashboard_refresh_total",
	Help: "Number of dashboard refreshes by outcome",
}, []string{"outcome"})
