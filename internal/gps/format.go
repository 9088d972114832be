// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// FormatGGA renders f as a checksummed GPGGA line (without line ending).
// The raw magnitudes are re-derived from the decimal coordinates.
func FormatGGA(f Fix, hdop float64) string {
	lat, ns := EncodeLatitude(f.Latitude)
	lon, ew := EncodeLongitude(f.Longitude)

	fields := []string{
		SentenceTag[1:],
		f.Timestamp,
		lat, ns,
		lon, ew,
		strconv.Itoa(f.Quality),
		twoDigits(f.Satellites),
		strconv.FormatFloat(hdop, 'f', 1, 64),
		strconv.FormatFloat(f.Altitude, 'f', 1, 64),
		"M",
		"0.0",
		"M",
		"",
		"",
	}
	payload := strings.Join(fields, ",")
	return "$" + payload + "*" + nmea.Checksum(payload)
}

func twoDigits(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
