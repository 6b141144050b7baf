package grbl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTransmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "commands_transmitted_total",
		Help:      "Lines written to the controller.",
	}, []string{"priority"})

	lowPriorityDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "low_priority_dropped_total",
		Help:      "Low priority lines rejected because the queue was not empty.",
	})

	acks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "acks_total",
		Help:      "Acknowledgements received.",
	})

	statusReports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "status_reports_total",
		Help:      "Status reports received, by parse result.",
	}, []string{"result"})

	outputLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "output_lines_total",
		Help:      "Non-protocol lines forwarded to output, by delivery result.",
	}, []string{"result"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tubecut",
		Subsystem: "grbl",
		Name:      "queue_depth",
		Help:      "Lines waiting to be transmitted.",
	})
)
