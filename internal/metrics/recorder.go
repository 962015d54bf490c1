/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Results of a resolution, used as the `result` label.
const (
	ResultSolved      = "solved"
	ResultUnsolvable  = "unsolvable"
	ResultError       = "error"
	ResultDeadline    = "deadline_exceeded"
	ResultCanceled    = "canceled"
	ResultInvalidArgs = "invalid_arguments"
)

// Recorder stores all the metrics related to resolutions.
type Recorder struct {
	solveDuration *prometheus.HistogramVec
	solveTotal    *prometheus.CounterVec
	operations    *prometheus.CounterVec
	poolSolvables prometheus.Gauge
}

// NewRecorder creates the resolution metrics and registers them on reg.
// A nil reg skips registration, which lets tests create recorders freely.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	solveDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pkgsolv_solve_duration_seconds",
			Help:    "Time spent resolving a request, grouped by result",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"result"})

	solveTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgsolv_solve_total",
			Help: "Number of resolutions, grouped by result",
		}, []string{"result"})

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgsolv_transaction_operations_total",
			Help: "Operations of the computed transactions, grouped by kind",
		}, []string{"kind"})

	poolSolvables := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pkgsolv_pool_solvables",
			Help: "Number of solvables in the pool of the last resolution",
		})

	if reg != nil {
		reg.MustRegister(
			solveDuration,
			solveTotal,
			operations,
			poolSolvables,
		)
	}

	return &Recorder{
		solveDuration: solveDuration,
		solveTotal:    solveTotal,
		operations:    operations,
		poolSolvables: poolSolvables,
	}
}

// ObserveSolve records one resolution that ended with result after d.
func (r *Recorder) ObserveSolve(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.solveDuration.WithLabelValues(result).Observe(d.Seconds())
	r.solveTotal.WithLabelValues(result).Inc()
}

// RecordOperations adds the number of operations of each kind.
func (r *Recorder) RecordOperations(byKind map[string]int) {
	if r == nil {
		return
	}
	for kind, n := range byKind {
		r.operations.WithLabelValues(kind).Add(float64(n))
	}
}

// SetPoolSize records the number of solvables of the last pool.
func (r *Recorder) SetPoolSize(n int) {
	if r == nil {
		return
	}
	r.poolSolvables.Set(float64(n))
}
