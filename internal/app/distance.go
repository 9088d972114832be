// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/relabs-tech/gps_speedometer/internal/geo"
)

// RunDistance prints the great-circle distance between two points given as
// "lat1 lon1 lat2 lon2" in decimal degrees, and each point's grid reference.
func RunDistance(args []string, out io.Writer) error {
	if len(args) != 4 {
		return fmt.Errorf("want 4 arguments (lat1 lon1 lat2 lon2), got %d", len(args))
	}

	var v [4]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("argument %d %q: %w", i+1, a, err)
		}
		v[i] = f
	}
	for i := 0; i < 4; i += 2 {
		if v[i] < -90 || v[i] > 90 {
			return fmt.Errorf("latitude %v out of range", v[i])
		}
		if v[i+1] < -180 || v[i+1] > 180 {
			return fmt.Errorf("longitude %v out of range", v[i+1])
		}
	}

	d := geo.DistanceMeters(v[0], v[1], v[2], v[3])
	fmt.Fprintf(out, "distance: %.1f m (%.3f km)\n", d, d/1000)

	for i := 0; i < 2; i++ {
		lat, lon := v[2*i], v[2*i+1]
		ref, err := geo.Grid(lat, lon)
		if err != nil {
			fmt.Fprintf(out, "point %d: %.6f,%.6f (no grid reference: %v)\n", i+1, lat, lon, err)
			continue
		}
		fmt.Fprintf(out, "point %d: %.6f,%.6f  UTM %s  MGRS %s\n", i+1, lat, lon, ref, ref.MGRS)
	}
	return nil
}
