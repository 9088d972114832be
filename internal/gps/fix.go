// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// Position is a signed decimal-degree coordinate pair.
type Position struct {
	Latitude  float64 `json:"lat"` // decimal degrees, negative south
	Longitude float64 `json:"lon"` // decimal degrees, negative west
}

// Fix represents one decoded GPGGA sentence.
type Fix struct {
	Timestamp    string  `json:"timestamp"`  // hhmmss.ss as sent by the receiver
	LatitudeRaw  float64 `json:"lat_raw"`    // ddmm.mm magnitude
	NorthSouth   string  `json:"ns"`         // "N" / "S"
	LongitudeRaw float64 `json:"lon_raw"`    // dddmm.mm magnitude
	EastWest     string  `json:"ew"`         // "E" / "W"
	Quality      int     `json:"quality"`    // 0 = invalid
	Satellites   int     `json:"satellites"` // satellites in use
	Altitude     float64 `json:"altitude_m"` // meters above mean sea level
	Latitude     float64 `json:"lat"`        // decimal degrees
	Longitude    float64 `json:"lon"`        // decimal degrees
}

// Position returns the fix's decimal-degree coordinates.
func (f Fix) Position() Position {
	return Position{Latitude: f.Latitude, Longitude: f.Longitude}
}

// HasFix reports whether the receiver flagged the fix as usable.
func (f Fix) HasFix() bool {
	return f.Quality > 0
}

// InRange reports whether the coordinates lie on the globe. Receivers only
// produce out-of-range values when the line was corrupted in a way the field
// grammar cannot catch (e.g. 9912.00 N).
func (f Fix) InRange() bool {
	return f.Latitude >= -90 && f.Latitude <= 90 &&
		f.Longitude >= -180 && f.Longitude <= 180
}
