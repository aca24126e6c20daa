package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripmate_client",
			Name:      "sync_frames_received_total",
			Help:      "Broadcast frames received over the realtime channel.",
		},
		[]string{"kind"},
	)

	syncReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tripmate_client",
			Name:      "sync_reconnects_total",
			Help:      "Times the realtime channel re-established after a drop.",
		},
	)

	storeRefetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripmate_client",
			Name:      "store_refetches_total",
			Help:      "Itinerary refetches triggered by invalidation.",
		},
		[]string{"reason"},
	)

	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripmate_client",
			Name:      "place_search_requests_total",
			Help:      "Per-category nearby-search requests.",
		},
		[]string{"category", "outcome"},
	)
)
