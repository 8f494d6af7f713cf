// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import "testing"

func TestRoundTrip(t *testing.T) {
	ref := LLA{Lat: 51.5, Lon: -0.12, Alt: 10}
	cases := []LLA{
		{Lat: 51.5, Lon: -0.12, Alt: 10},
		{Lat: 51.501, Lon: -0.118, Alt: 25},
		{Lat: 51.499, Lon: -0.125, Alt: -5},
	}
	for _, x := range cases {
		enu := ToENU(ref, x)
		back := ToLLA(ref, enu)
		if absDiff(back.Lat, x.Lat) > 1e-6 {
			t.Fatalf("lat round trip: got %v want %v", back.Lat, x.Lat)
		}
		if absDiff(back.Lon, x.Lon) > 1e-6 {
			t.Fatalf("lon round trip: got %v want %v", back.Lon, x.Lon)
		}
		if absDiff(back.Alt, x.Alt) > 1e-3 {
			t.Fatalf("alt round trip: got %v want %v", back.Alt, x.Alt)
		}
	}
}

func TestOriginIsZeroOffset(t *testing.T) {
	ref := LLA{Lat: 10, Lon: 20, Alt: 100}
	enu := ToENU(ref, ref)
	if absDiff(enu.East, 0) > 1e-9 || absDiff(enu.North, 0) > 1e-9 || absDiff(enu.Up, 0) > 1e-9 {
		t.Fatalf("ToENU(ref, ref) = %v, want zero", enu)
	}
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}
