// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes reader and tracker activity to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// Sentence outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
)

// Collector counts sentence outcomes and tracks the latest report.
// It implements gps.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	Sentences      *prometheus.CounterVec
	ExhaustedReads prometheus.Counter

	Speed      prometheus.Gauge
	Satellites prometheus.Gauge
	Quality    prometheus.Gauge
	Altitude   prometheus.Gauge
}

var _ gps.Observer = (*Collector)(nil)

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sentences, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gps_sentences_total",
		Help: "Lines read from the receiver, labeled by outcome and rejection reason.",
	}, []string{"outcome", "reason"}), "gps_sentences_total")
	if err != nil {
		return nil, err
	}

	exhausted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gps_read_exhausted_total",
		Help: "Fix reads that used every attempt without a valid sentence.",
	}), "gps_read_exhausted_total")
	if err != nil {
		return nil, err
	}

	gauges := make([]prometheus.Gauge, 0, 4)
	for _, opts := range []prometheus.GaugeOpts{
		{Name: "gps_speed_kmh", Help: "Speed between the last two fixes."},
		{Name: "gps_satellites", Help: "Satellites in use for the last fix."},
		{Name: "gps_fix_quality", Help: "Fix quality indicator of the last fix (0 = invalid)."},
		{Name: "gps_altitude_meters", Help: "Altitude above mean sea level of the last fix."},
	} {
		g, err := registerGauge(reg, prometheus.NewGauge(opts), opts.Name)
		if err != nil {
			return nil, err
		}
		gauges = append(gauges, g)
	}

	return &Collector{
		gatherer:       gatherer,
		Sentences:      sentences,
		ExhaustedReads: exhausted,
		Speed:          gauges[0],
		Satellites:     gauges[1],
		Quality:        gauges[2],
		Altitude:       gauges[3],
	}, nil
}

// Accepted counts an accepted line.
func (c *Collector) Accepted(partial bool) {
	if partial {
		c.Sentences.WithLabelValues(OutcomePartial, string(gps.ReasonPartialDecode)).Inc()
		return
	}
	c.Sentences.WithLabelValues(OutcomeAccepted, "").Inc()
}

// Rejected counts a rejected line or failed read.
func (c *Collector) Rejected(reason gps.Reason) {
	c.Sentences.WithLabelValues(OutcomeRejected, string(reason)).Inc()
}

// Exhausted counts a read that found no fix.
func (c *Collector) Exhausted() {
	c.ExhaustedReads.Inc()
}

// ObserveReport updates the gauges from r. Speed is left alone until the
// tracker has two fixes.
func (c *Collector) ObserveReport(r track.Report) {
	if r.HaveSpeed {
		c.Speed.Set(r.SpeedKmh)
	}
	c.Satellites.Set(float64(r.Fix.Satellites))
	c.Quality.Set(float64(r.Fix.Quality))
	c.Altitude.Set(r.Fix.Altitude)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
