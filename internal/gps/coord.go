// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
)

// DegreesMinutesToDecimal converts an NMEA ddmm.mm / dddmm.mm magnitude plus
// hemisphere letter to signed decimal degrees.
//
//	deg = trunc(raw/100) + (raw mod 100)/60, negated for S and W
func DegreesMinutesToDecimal(raw float64, hemisphere string) float64 {
	deg := math.Trunc(raw/100) + math.Mod(raw, 100)/60
	if hemisphere == nmea.South || hemisphere == nmea.West {
		deg = -deg
	}
	return deg
}

// EncodeLatitude renders signed decimal degrees as a ddmm.mmmm magnitude and
// an N/S letter.
func EncodeLatitude(deg float64) (magnitude, hemisphere string) {
	hemisphere = nmea.North
	if deg < 0 {
		hemisphere = nmea.South
	}
	return encodeDegreesMinutes(deg, 2), hemisphere
}

// EncodeLongitude renders signed decimal degrees as a dddmm.mmmm magnitude
// and an E/W letter.
func EncodeLongitude(deg float64) (magnitude, hemisphere string) {
	hemisphere = nmea.East
	if deg < 0 {
		hemisphere = nmea.West
	}
	return encodeDegreesMinutes(deg, 3), hemisphere
}

func encodeDegreesMinutes(deg float64, width int) string {
	abs := math.Abs(deg)
	whole := math.Trunc(abs)
	mins := math.Round((abs-whole)*60*1e4) / 1e4
	if mins >= 60 {
		whole++
		mins -= 60
	}
	return fmt.Sprintf("%0*d%07.4f", width, int(whole), mins)
}
