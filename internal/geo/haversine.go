// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"
	"time"
)

// EarthRadiusM is the mean Earth radius used for all great-circle math.
const EarthRadiusM = 6371e3

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceMeters returns the great-circle distance between two points given
// in decimal degrees, using the haversine formula:
//
//	a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2)
//	c = 2·atan2(√a, √(1−a))
//	d = R·c
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Rounding can push a a hair outside [0,1] near antipodes.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// SpeedKmh converts a distance covered in elapsed time to km/h.
// ok is false when elapsed is not positive.
func SpeedKmh(distanceM float64, elapsed time.Duration) (kmh float64, ok bool) {
	if elapsed <= 0 {
		return 0, false
	}
	return (distanceM / 1000) / (elapsed.Seconds() / 3600), true
}

// Destination returns the point reached from (lat, lon) after travelling
// distanceM along the initial bearing (degrees clockwise from north).
func Destination(lat, lon, bearingDeg, distanceM float64) (float64, float64) {
	phi1 := toRad(lat)
	lambda1 := toRad(lon)
	theta := toRad(bearingDeg)
	delta := distanceM / EarthRadiusM

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	// Normalise to [-180, 180).
	lon2 := math.Mod(toDeg(lambda2)+540, 360) - 180
	return toDeg(phi2), lon2
}
