// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// RunMockConsole drives the simulated receiver through the reader and
// tracker and prints each report, with no broker involved.
func RunMockConsole(ctx context.Context, out io.Writer, interval time.Duration, logger *log.Logger) error {
	printer, err := newConsolePrinter(out, "%H:%M:%S")
	if err != nil {
		return err
	}

	reader := gps.NewReader(gps.NewMockTransport(mockOrigin, mockBearingDeg, mockSpeedMps), gps.ReaderConfig{
		RetryDelay: 0,
		Logger:     logger,
	})

	var tracker track.Tracker
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			fix, ok := reader.ReadFix()
			if !ok || !reader.Fresh() {
				logger.Warn("mock receiver produced no fix")
				continue
			}
			printer.print(tracker.Update(fix, now))
		}
	}
}
