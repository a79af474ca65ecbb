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

package mvcc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"metakv/pkg/metrics"
)

// Metrics wraps the store's Prometheus instruments. It is constructed
// against a caller-supplied registry so multiple Store instances (as
// in tests) never collide on metric registration.
type Metrics struct {
	store *metrics.StoreMetrics
}

// NewMetrics registers a fresh metric set on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	return &Metrics{store: metrics.NewStoreMetrics(registry)}
}

// RecordStorageOperation records one operation's latency and bumps its
// total counter.
func (m *Metrics) RecordStorageOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.store.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.store.OperationTotal.WithLabelValues(operation).Inc()
}

// RecordStorageError bumps the error counter for operation.
func (m *Metrics) RecordStorageError(operation string) {
	if m == nil {
		return
	}
	m.store.OperationErrors.WithLabelValues(operation).Inc()
}

// SetKeysTotal reports the current approximate live key count.
func (m *Metrics) SetKeysTotal(n float64) {
	if m == nil {
		return
	}
	m.store.KeysTotal.Set(n)
}
