package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit  = "hit"
	resultMiss = "miss"
)

var (
	requests = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Number of cache lookups, differentiated by cache and result.",
		},
		[]string{"cache", "result"},
	)

	invalidations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Number of explicit cache invalidations.",
		},
		[]string{"cache"},
	)
)
