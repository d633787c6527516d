// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liargame_rooms_active",
		Help: "Number of live rooms.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liargame_events_published_total",
		Help: "Events published to room subscribers, by event type.",
	}, []string{"type"})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liargame_actions_total",
		Help: "Inbound player actions, by action and outcome.",
	}, []string{"action", "outcome"})
)
