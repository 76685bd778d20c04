// Package metrics provides Prometheus metrics for the ratio service and the reload command.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bankruptcy"

// Metrics holds all service metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Reload
	ReloadsTotal   *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	RowsLoaded     *prometheus.GaugeVec
	RowsDropped    *prometheus.GaugeVec
	CellsImputed   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.ReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Dataset reloads by result",
		},
		[]string{"result"},
	)
	m.ReloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Time spent writing a reload",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	m.RowsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows written by the last successful reload, by table",
		},
		[]string{"table"},
	)
	m.RowsDropped = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outlier_rows_dropped",
			Help:      "Rows removed by each column's outlier pass in the last clean",
		},
		[]string{"column"},
	)
	m.CellsImputed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells_imputed",
			Help:      "Missing cells replaced with a column median in the last clean",
		},
	)

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ReloadsTotal,
		m.ReloadDuration,
		m.RowsLoaded,
		m.RowsDropped,
		m.CellsImputed,
	)
	return m
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveClean records the effect of the cleaning pipeline
func (m *Metrics) ObserveClean(imputed int, dropped map[string]int) {
	if m == nil {
		return
	}
	m.CellsImputed.Set(float64(imputed))
	m.RowsDropped.Reset()
	for col, n := range dropped {
		m.RowsDropped.WithLabelValues(col).Set(float64(n))
	}
}

// ObserveReload records a finished reload; row counts are only kept on success
func (m *Metrics) ObserveReload(err error, elapsed time.Duration, companies, ratios int) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ReloadsTotal.WithLabelValues("success").Inc()
	m.ReloadDuration.Observe(elapsed.Seconds())
	m.RowsLoaded.WithLabelValues("companies").Set(float64(companies))
	m.RowsLoaded.WithLabelValues("financial_ratios").Set(float64(ratios))
}
