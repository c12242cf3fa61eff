// Package metrics holds the prometheus collectors shared by the provider client and the query cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "goflix"

var (
	// ProviderRequests counts provider calls by endpoint and outcome ("ok" or an error kind).
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tmdb",
		Name:      "requests_total",
		Help:      "Requests issued to the metadata provider, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// ProviderRetries counts retries by error kind.
	ProviderRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tmdb",
		Name:      "retries_total",
		Help:      "Retried provider requests, by error kind.",
	}, []string{"kind"})

	// CacheLookups counts query cache reads by result (hit, stale, miss, disabled).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query_cache",
		Name:      "lookups_total",
		Help:      "Query cache lookups, by result.",
	}, []string{"result"})

	// CacheFetches counts fetches actually run by the query cache, by outcome.
	CacheFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query_cache",
		Name:      "fetches_total",
		Help:      "Fetches run by the query cache, by outcome.",
	}, []string{"outcome"})

	// CacheEvictions counts entries dropped after their gc window.
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query_cache",
		Name:      "evictions_total",
		Help:      "Query cache entries evicted after prolonged disuse.",
	})
)
