package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_server_commands_total",
		Help: "Total number of commands processed.",
	}, []string{"command"})
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_server_lookups_total",
		Help: "Total number of GET lookups.",
	}, []string{"status" /* hit | miss */})
	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_server_command_errors_total",
		Help: "Total number of commands answered with an error reply.",
	})
	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_server_evictions_total",
		Help: "Total number of keys evicted by the capacity bound.",
	})
	connectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_server_connections_total",
		Help: "Total number of accepted connections.",
	})
)
