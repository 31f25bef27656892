package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "report_service_relay_active_sessions",
	Help: "Number of live submitter-staff sessions",
})

var forwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_relay_messages_total",
	Help: "Number of relayed messages by sender role, kind and result",
}, []string{"from", "kind", "result"})

var claims = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_relay_claims_total",
	Help: "Number of claim attempts by result",
}, []string{"result"})
