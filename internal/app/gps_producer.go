// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/gps_speedometer/internal/config"
	"github.com/relabs-tech/gps_speedometer/internal/gps"
	"github.com/relabs-tech/gps_speedometer/internal/metrics"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// The simulated receiver starts in east Singapore and heads ENE at 50 km/h.
var (
	mockOrigin     = gps.Position{Latitude: 1.346316, Longitude: 103.931746}
	mockBearingDeg = 74.3
	mockSpeedMps   = 13.9
)

// ProducerConfig holds the optional parts of a Producer.
type ProducerConfig struct {
	Topic   string
	Metrics *metrics.Collector // may be nil
	Now     func() time.Time
	Logger  *log.Logger
}

// Producer turns fixes from a Reader into published reports.
type Producer struct {
	reader  *gps.Reader
	tracker track.Tracker
	pub     Publisher
	topic   string
	metrics *metrics.Collector
	now     func() time.Time
	log     *log.Logger
}

// NewProducer wires reader to pub.
func NewProducer(reader *gps.Reader, pub Publisher, cfg ProducerConfig) *Producer {
	p := &Producer{
		reader:  reader,
		pub:     pub,
		topic:   cfg.Topic,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		log:     cfg.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = log.Default()
	}
	return p
}

// Step reads one fix and publishes its report. ok is false when the reader
// gave up without a fix or only repeated the previous one after a partial
// decode; the tracker then keeps its last position and nothing is published.
func (p *Producer) Step() (r track.Report, ok bool, err error) {
	fix, ok := p.reader.ReadFix()
	if !ok {
		return track.Report{}, false, nil
	}
	if !p.reader.Fresh() {
		p.log.Debug("partial decode, last report stands", "timestamp", p.reader.State().Timestamp)
		return track.Report{}, false, nil
	}

	r = p.tracker.Update(fix, p.now())
	if p.metrics != nil {
		p.metrics.ObserveReport(r)
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return r, true, fmt.Errorf("marshal report: %w", err)
	}
	if err := p.pub.Publish(p.topic, payload); err != nil {
		return r, true, fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return r, true, nil
}

// Run calls Step every interval until ctx is cancelled. A read in progress
// is finished before Run notices the cancellation.
func (p *Producer) Run(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if ctx.Err() != nil {
			return nil
		}

		r, ok, err := p.Step()
		switch {
		case err != nil:
			p.log.Error("publish failed", "err", err)
		case !ok:
			p.log.Warn("no new fix this cycle")
		case r.HaveSpeed:
			p.log.Info("published fix", "lat", r.Fix.Latitude, "lon", r.Fix.Longitude,
				"sats", r.Fix.Satellites, "speed_kmh", fmt.Sprintf("%.2f", r.SpeedKmh))
		default:
			p.log.Info("published first fix", "lat", r.Fix.Latitude, "lon", r.Fix.Longitude,
				"sats", r.Fix.Satellites)
		}
	}
}

// openTransport returns the configured receiver and a function releasing it.
func openTransport(cfg *config.Config, logger *log.Logger) (gps.Transport, func() error, error) {
	if cfg.UseMockReceiver() {
		logger.Info("using simulated receiver", "lat", mockOrigin.Latitude, "lon", mockOrigin.Longitude,
			"bearing", mockBearingDeg, "speed_mps", mockSpeedMps)
		return gps.NewMockTransport(mockOrigin, mockBearingDeg, mockSpeedMps), func() error { return nil }, nil
	}

	port, err := gps.OpenSerial(gps.SerialConfig{
		PortName:    cfg.GPSSerialPort,
		BaudRate:    cfg.GPSBaudRate,
		ReadTimeout: cfg.GPSReadTimeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("GPS serial port opened", "port", port.Name(), "baud", cfg.GPSBaudRate)
	return port, port.Close, nil
}

// RunGPSProducer reads GPGGA fixes from the receiver, derives speed and
// publishes each report as JSON to TOPIC_GPS.
func RunGPSProducer(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	// ---- 1) Connect to MQTT broker ----
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// ---- 2) Open the receiver ----
	transport, closeTransport, err := openTransport(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTransport()

	// ---- 3) Metrics ----
	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	// ---- 4) Read, track, publish ----
	reader := gps.NewReader(transport, gps.ReaderConfig{
		MaxAttempts: cfg.GPSMaxAttempts,
		RetryDelay:  cfg.GPSRetryDelay(),
		Partial:     cfg.PartialDecodePolicy,
		Logger:      logger,
		Observer:    collector,
	})
	producer := NewProducer(reader, mqttPublisher{client: client}, ProducerConfig{
		Topic:   cfg.TopicGPS,
		Metrics: collector,
		Logger:  logger,
	})

	logger.Info("publishing reports", "topic", cfg.TopicGPS, "interval", cfg.ReadInterval(),
		"partial_policy", cfg.PartialDecodePolicy)
	err = producer.Run(ctx, cfg.ReadInterval())
	logger.Info("GPS producer shutting down")
	return err
}
