package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_telegram_requests_total",
	Help: "Number of Bot API calls by bot, operation and result",
}, []string{"bot", "op", "result"})

var updatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_telegram_updates_total",
	Help: "Number of updates received by bot and kind",
}, []string{"bot", "kind"})

func observe(bot, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	requests.WithLabelValues(bot, op, result).Inc()
}
