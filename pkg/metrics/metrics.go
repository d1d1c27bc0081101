// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package metrics exposes prometheus collectors for the search and transfer
// engines. Collectors are registered on a caller-supplied registry so several
// engine instances (and tests) never collide on the default registry.
//
// Every method is safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ferry"

// 📊 Metrics holds all collectors
type Metrics struct {
	// Search metrics
	SearchesStarted prometheus.Counter
	SearchResults   prometheus.Counter
	SearchErrors    prometheus.Counter
	SearchActive    prometheus.Gauge

	// Transfer metrics
	TransfersStarted  *prometheus.CounterVec
	TransfersFinished *prometheus.CounterVec
	TransferUnits     prometheus.Counter
	TransfersActive   prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// 🏭 New registers every collector on reg. A nil reg gets a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		SearchesStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of search sessions started",
		}),
		SearchResults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Total number of entries reported by searches",
		}),
		SearchErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Total number of directory read failures seen by searches",
		}),
		SearchActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_active",
			Help:      "1 while a search session is running",
		}),

		TransfersStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_started_total",
			Help:      "Total number of transfer sessions started",
		}, []string{"kind"}),
		TransfersFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_finished_total",
			Help:      "Total number of transfer sessions that reached a terminal state",
		}, []string{"kind", "state"}),
		TransferUnits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_units_total",
			Help:      "Progress units committed by transfers (bytes plus folder units)",
		}),
		TransfersActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transfers_active",
			Help:      "Number of transfer sessions not yet terminal",
		}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler serves the registry this instance was built on.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// 🔍 search hooks

func (m *Metrics) SearchStarted() {
	if m == nil {
		return
	}
	m.SearchesStarted.Inc()
	m.SearchActive.Set(1)
}

func (m *Metrics) SearchFound() {
	if m == nil {
		return
	}
	m.SearchResults.Inc()
}

func (m *Metrics) SearchFailed() {
	if m == nil {
		return
	}
	m.SearchErrors.Inc()
}

func (m *Metrics) SearchStopped() {
	if m == nil {
		return
	}
	m.SearchActive.Set(0)
}

// 🚚 transfer hooks

func (m *Metrics) TransferStarted(kind string) {
	if m == nil {
		return
	}
	m.TransfersStarted.WithLabelValues(kind).Inc()
	m.TransfersActive.Inc()
}

func (m *Metrics) TransferProgress(units uint64) {
	if m == nil {
		return
	}
	m.TransferUnits.Add(float64(units))
}

func (m *Metrics) TransferFinished(kind, state string) {
	if m == nil {
		return
	}
	m.TransfersFinished.WithLabelValues(kind, state).Inc()
	m.TransfersActive.Dec()
}

// 🌐 ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}
