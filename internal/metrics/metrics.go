package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bachatlist_sync_runs_total",
			Help: "Total number of price sync batches by outcome",
		},
		[]string{"status"},
	)

	SyncItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bachatlist_sync_items_total",
			Help: "Total number of catalog items processed by a price sync",
		},
		[]string{"result"},
	)

	PriceDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bachatlist_price_drops_total",
			Help: "Total number of price drops detected",
		},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bachatlist_notifications_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"channel", "status"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bachatlist_sync_duration_seconds",
			Help:    "Duration of a price sync batch in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	CuelinksCampaigns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bachatlist_cuelinks_campaigns_total",
			Help: "Total number of Cuelinks campaigns processed by outcome",
		},
		[]string{"result"},
	)
)
