// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"math"
	"time"

	"github.com/relabs-tech/gps_speedometer/internal/geo"
)

// mockChatter is a sentence the decoder ignores, like the RMC/GSA/GSV lines
// a real receiver interleaves with GGA.
const mockChatter = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n"

// MockTransport is a simulated receiver travelling in a straight line at a
// constant speed. Every ChatterEvery-th read returns a non-GGA sentence.
type MockTransport struct {
	origin     Position
	bearingDeg float64
	speedMps   float64

	ChatterEvery int

	now   func() time.Time
	start time.Time
	reads int
}

// NewMockTransport creates a mock receiver that starts at origin now.
func NewMockTransport(origin Position, bearingDeg, speedMps float64) *MockTransport {
	return NewMockTransportWithClock(origin, bearingDeg, speedMps, time.Now)
}

// NewMockTransportWithClock is NewMockTransport with an injected clock.
func NewMockTransportWithClock(origin Position, bearingDeg, speedMps float64, now func() time.Time) *MockTransport {
	return &MockTransport{
		origin:       origin,
		bearingDeg:   bearingDeg,
		speedMps:     speedMps,
		ChatterEvery: 4,
		now:          now,
		start:        now(),
	}
}

// ReadLine returns the next simulated line.
func (m *MockTransport) ReadLine() ([]byte, error) {
	m.reads++
	if m.ChatterEvery > 0 && m.reads%m.ChatterEvery == 0 {
		return []byte(mockChatter), nil
	}

	now := m.now()
	elapsed := now.Sub(m.start).Seconds()
	lat, lon := geo.Destination(m.origin.Latitude, m.origin.Longitude, m.bearingDeg, m.speedMps*elapsed)

	fix := Fix{
		Timestamp:  now.UTC().Format("150405.00"),
		Quality:    1,
		Satellites: 8,
		Altitude:   15 + 2*math.Sin(elapsed/10),
		Latitude:   lat,
		Longitude:  lon,
	}
	return []byte(FormatGGA(fix, 0.9) + "\r\n"), nil
}
