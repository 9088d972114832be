// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package track turns successive fixes into distance and speed.
package track

import (
	"time"

	"github.com/relabs-tech/gps_speedometer/internal/geo"
	"github.com/relabs-tech/gps_speedometer/internal/gps"
)

// Report is one fix plus the movement since the previous one.
type Report struct {
	Time      time.Time `json:"time"`
	Fix       gps.Fix   `json:"fix"`
	DistanceM float64   `json:"distance_m"`
	SpeedKmh  float64   `json:"speed_kmh"`
	HaveSpeed bool      `json:"have_speed"` // false for the first fix
}

// Tracker remembers the last known fix. The zero value is ready to use.
type Tracker struct {
	last     gps.Position
	lastTime time.Time
	have     bool
}

// Update records fix taken at now and reports movement since the last fix.
// A fix the receiver flagged invalid is reported without speed and does not
// replace the last known position.
func (t *Tracker) Update(fix gps.Fix, now time.Time) Report {
	r := Report{Time: now, Fix: fix}
	if !fix.HasFix() {
		return r
	}
	pos := fix.Position()

	if t.have {
		r.DistanceM = geo.DistanceMeters(t.last.Latitude, t.last.Longitude, pos.Latitude, pos.Longitude)
		r.SpeedKmh, r.HaveSpeed = geo.SpeedKmh(r.DistanceM, now.Sub(t.lastTime))
	}

	t.last = pos
	t.lastTime = now
	t.have = true
	return r
}

// Last returns the last known position, if any. A missed read does not clear it.
func (t *Tracker) Last() (gps.Position, time.Time, bool) {
	return t.last, t.lastTime, t.have
}
