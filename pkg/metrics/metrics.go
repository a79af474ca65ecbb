// Copyright 2025 The axfor Authors
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "metakv"
	subsystem = "storage"
)

// StoreMetrics holds the Prometheus instruments for one MVCC store
// instance. Registered against an injected registry rather than the
// global default so multiple stores (as in tests) don't collide.
type StoreMetrics struct {
	OperationDuration *prometheus.HistogramVec
	OperationTotal    *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec

	KeysTotal prometheus.Gauge
}

// NewStoreMetrics registers and returns the store's metric set.
func NewStoreMetrics(registry prometheus.Registerer) *StoreMetrics {
	return &StoreMetrics{
		OperationDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Histogram of store operation latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_total",
				Help:      "Total number of store operations",
			},
			[]string{"operation"},
		),
		OperationErrors: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_errors_total",
				Help:      "Total number of store operation errors",
			},
			[]string{"operation"},
		),
		KeysTotal: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "keys_total",
				Help:      "Approximate number of live keys",
			},
		),
	}
}
