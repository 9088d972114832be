// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/relabs-tech/gps_speedometer/internal/config"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// formatReport renders one console line for r, prefixed with stamp.
func formatReport(stamp string, r track.Report) string {
	f := r.Fix
	speed := "    --- km/h"
	if r.HaveSpeed {
		speed = fmt.Sprintf("%7.2f km/h", r.SpeedKmh)
	}
	return fmt.Sprintf(
		"%s [GPS ] time=%s lat=%.6f lon=%.6f alt=%.1fm q=%d sats=%2d dist=%.1fm speed=%s",
		stamp, f.Timestamp, f.Latitude, f.Longitude, f.Altitude, f.Quality, f.Satellites, r.DistanceM, speed,
	)
}

// consolePrinter writes reports to out with a local time stamp.
type consolePrinter struct {
	out   io.Writer
	stamp *strftime.Strftime
	now   func() time.Time
}

func newConsolePrinter(out io.Writer, pattern string) (*consolePrinter, error) {
	stamp, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("timestamp format %q: %w", pattern, err)
	}
	return &consolePrinter{out: out, stamp: stamp, now: time.Now}, nil
}

func (p *consolePrinter) print(r track.Report) {
	fmt.Fprintln(p.out, formatReport(p.stamp.FormatString(p.now()), r))
}

// RunConsoleMQTT prints every report published on TOPIC_GPS until ctx is
// cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	printer, err := newConsolePrinter(os.Stdout, cfg.ConsoleTimestampFormat)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeReports(client, cfg.TopicGPS, logger, printer.print); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}
