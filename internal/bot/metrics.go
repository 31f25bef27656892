package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var adminActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_admin_actions_total",
	Help: "Actions performed by staff in the admin bot.",
}, []string{"action"})
