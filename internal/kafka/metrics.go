package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_service_kafka_events_total",
	Help: "Number of report events written to Kafka by event and result",
}, []string{"event", "result"})
