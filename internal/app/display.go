// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gps_speedometer/internal/config"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// displayData holds the latest report for the display loop.
type displayData struct {
	mu     sync.RWMutex
	report track.Report
	have   bool
}

func (d *displayData) set(r track.Report) {
	d.mu.Lock()
	d.report = r
	d.have = true
	d.mu.Unlock()
}

// snapshot returns a copy of the latest report, or nil before the first.
func (d *displayData) snapshot() *track.Report {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.have {
		return nil
	}
	r := d.report
	return &r
}

// displayLines is the text shown for r, one entry per display line.
func displayLines(r *track.Report) []string {
	if r == nil {
		return []string{"", "GPS Speed", "Waiting..."}
	}

	latDir := "N"
	lat := r.Fix.Latitude
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}
	lonDir := "E"
	lon := r.Fix.Longitude
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	speed := "--- km/h"
	if r.HaveSpeed {
		speed = fmt.Sprintf("%.1f km/h", r.SpeedKmh)
	}

	return []string{
		fmt.Sprintf("%.4f%s", lat, latDir),
		fmt.Sprintf("%.4f%s", lon, lonDir),
		fmt.Sprintf("Alt: %.0fm S:%d", r.Fix.Altitude, r.Fix.Satellites),
		speed,
	}
}

// renderLines draws lines top to bottom in the 7x13 font.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}

// renderReport is the full frame for r (nil before the first report).
func renderReport(r *track.Report) *image1bit.VerticalLSB {
	return renderLines(displayLines(r))
}

// addrBus sends every transaction to addr, so the display can sit at a
// non-default I2C address.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// RunDisplay shows the latest report on an SSD1306 OLED.
func RunDisplay(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &opts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	logger.Info("display initialized", "addr", fmt.Sprintf("0x%02X", cfg.DisplayI2CAddr))

	splash := renderLines([]string{"", " GPS Speedometer", " Looking for", " sats"})
	if err := dev.Draw(dev.Bounds(), splash, image.Point{}); err != nil {
		logger.Warn("error showing splash", "err", err)
	}

	data := &displayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeReports(client, cfg.TopicGPS, logger, data.set); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.Info("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return dev.Halt()
		case <-ticker.C:
			if err := dev.Draw(dev.Bounds(), renderReport(data.snapshot()), image.Point{}); err != nil {
				logger.Warn("error updating display", "err", err)
			}
		}
	}
}
