// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// GridRef is a position expressed on the UTM grid, plus its MGRS string.
type GridRef struct {
	Zone       int     `json:"zone"`
	Hemisphere string  `json:"hemisphere"` // "N" or "S"
	Easting    float64 `json:"easting"`
	Northing   float64 `json:"northing"`
	MGRS       string  `json:"mgrs,omitempty"`
}

func (g GridRef) String() string {
	return fmt.Sprintf("%d%s %.0fE %.0fN", g.Zone, g.Hemisphere, g.Easting, g.Northing)
}

// LatLng converts decimal degrees to an s2.LatLng.
func LatLng(lat, lon float64) s2.LatLng {
	return s2.LatLng{
		Lat: s1.Angle(toRad(lat)),
		Lng: s1.Angle(toRad(lon)),
	}
}

// Grid converts decimal degrees to UTM. The MGRS string is filled at 1 m
// precision when the point is inside MGRS coverage; UTM does not cover the
// polar caps, so an error is returned there.
func Grid(lat, lon float64) (GridRef, error) {
	ll := LatLng(lat, lon)

	utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(ll, 0)
	if err != nil {
		return GridRef{}, fmt.Errorf("utm conversion of %.6f,%.6f: %w", lat, lon, err)
	}

	ref := GridRef{
		Zone:       int(utm.Zone),
		Hemisphere: "N",
		Easting:    utm.Easting,
		Northing:   utm.Northing,
	}
	if utm.Hemisphere == coordconv.HemisphereSouth {
		ref.Hemisphere = "S"
	}

	if mgrs, err := coordconv.DefaultMGRSConverter.ConvertFromGeodetic(ll, 5); err == nil {
		ref.MGRS = fmt.Sprint(mgrs)
	}
	return ref, nil
}
