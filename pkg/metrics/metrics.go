/*
Copyright 2026 Nscale.

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
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	MetricsNamespace = "issuetracker_apitest"
)

// Result labels a single check.
type Result string

const (
	ResultPass  Result = "pass"
	ResultFail  Result = "fail"
	ResultError Result = "error"
)

// Metrics holds the collectors of one run. Each instance owns its registry so
// that runs, and tests, never share counters.
type Metrics struct {
	registry *prometheus.Registry

	checksTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	testsRun        prometheus.Gauge
	testsPassed     prometheus.Gauge
	successRate     prometheus.Gauge
	runSucceeded    prometheus.Gauge
	lastRun         prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "checks_total",
			Help:      "Count of API checks by check name and result",
		}, []string{
			"check",
			"method",
			"result",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{
			"method",
		}),
		testsRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "tests_run",
			Help:      "Number of checks executed by the last run",
		}),
		testsPassed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "tests_passed",
			Help:      "Number of checks passed by the last run",
		}),
		successRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "success_rate_percent",
			Help:      "Percentage of checks passed by the last run",
		}),
		runSucceeded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_succeeded",
			Help:      "1 if the last run reached the pass threshold, 0 otherwise",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry exposes the collectors for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCheck records the outcome of one check. Transport failures carry no
// meaningful duration and are not observed by the histogram.
func (m *Metrics) RecordCheck(check, method string, result Result, duration time.Duration) {
	m.checksTotal.WithLabelValues(check, method, string(result)).Inc()

	if result != ResultError {
		m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// RecordRun records the totals of a finished run.
func (m *Metrics) RecordRun(run, passed int, rate float64, succeeded bool, finished time.Time) {
	m.testsRun.Set(float64(run))
	m.testsPassed.Set(float64(passed))
	m.successRate.Set(rate)

	if succeeded {
		m.runSucceeded.Set(1)
	} else {
		m.runSucceeded.Set(0)
	}

	m.lastRun.Set(float64(finished.Unix()))
}

// Push sends the collected metrics to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	if err := push.New(url, job).Gatherer(m.registry).Grouping("run_id", runID).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}

	return nil
}
