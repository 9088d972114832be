// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// State is what the decoder remembers about the last accepted sentence.
//
// It is a plain value: Decoder.Validate takes the current State and returns
// the next one, so nothing is mutated behind the caller's back. Fix is nil
// until a sentence has decoded completely; a partial decode only advances
// Timestamp.
type State struct {
	Timestamp string `json:"timestamp,omitempty"`
	Fix       *Fix   `json:"fix,omitempty"`
}

// Reset returns the empty state.
func (s State) Reset() State {
	return State{}
}

// Known reports whether a complete fix has been decoded since the last reset.
func (s State) Known() bool {
	return s.Fix != nil
}

// Sentinels is the legacy "unknown" encoding of a State: -1 for integers,
// -1.0 for decimals and "" for strings.
type Sentinels struct {
	Timestamp    string
	LatitudeRaw  float64
	NorthSouth   string
	LongitudeRaw float64
	EastWest     string
	Quality      int
	Satellites   int
	Altitude     float64
	Latitude     float64
	Longitude    float64
}

// Sentinels renders the state with absent fields replaced by sentinel values.
func (s State) Sentinels() Sentinels {
	out := Sentinels{
		Timestamp:    s.Timestamp,
		LatitudeRaw:  -1.0,
		LongitudeRaw: -1.0,
		Quality:      -1,
		Satellites:   -1,
		Altitude:     -1.0,
		Latitude:     -1.0,
		Longitude:    -1.0,
	}
	if s.Fix == nil {
		return out
	}
	f := s.Fix
	out.LatitudeRaw = f.LatitudeRaw
	out.NorthSouth = f.NorthSouth
	out.LongitudeRaw = f.LongitudeRaw
	out.EastWest = f.EastWest
	out.Quality = f.Quality
	out.Satellites = f.Satellites
	out.Altitude = f.Altitude
	out.Latitude = f.Latitude
	out.Longitude = f.Longitude
	return out
}
