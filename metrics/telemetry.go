// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes engine telemetry. It defaults to a no-op
// implementation; calling InitializePrometheusMetrics switches the backend
// for meters created afterwards. A meter keeps the backend that was current
// when it was created; LazyLoad meters are created on first use.
package metrics

import "net/http"

var metrics Metrics = &noopMetrics{} // defaults to a no-op implementation

// Metrics defines a telemetry backend.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler returns the backend's scrape handler.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

// CountMeter is a monotonic counter.
type CountMeter interface {
	Add(i int64)
}

// Counter creates (or fetches) a named counter.
func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

// GaugeMeter is a settable gauge.
type GaugeMeter interface {
	Set(i int64)
}

// Gauge creates (or fetches) a named gauge.
func Gauge(name string) GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) }

// LazyLoad caches the meter on first use, letting package-level meters be
// declared before the backend is chosen.
func LazyLoad[T any](f func() T) func() T {
	var cached *T
	return func() T {
		if cached == nil {
			v := f()
			cached = &v
		}
		return *cached
	}
}

// LazyLoadCounter returns a lazily-created counter.
func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

// LazyLoadGauge returns a lazily-created gauge.
func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

type noopMetrics struct{}

func (n *noopMetrics) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }
func (n *noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }
func (n *noopMetrics) GetOrCreateHandler() http.Handler        { return nil }

type noopMeter struct{}

func (noopMeter) Add(int64) {}
func (noopMeter) Set(int64) {}
