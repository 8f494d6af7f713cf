// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"math"

	"github.com/relabs-tech/inertial_computer/internal/geo"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// applyRailFusion snaps the position onto the rail polyline when close
// enough, and during a tunnel outage draws the heading toward the rail
// segment's direction. Callers must have already checked that the rail
// polyline has at least two nodes, the filter is initialized and
// current satellite count is below the low-satellite threshold.
func (f *Filter) applyRailFusion() {
	lla := geo.ToLLA(f.initLLA, geo.ENU{
		East:  float64(f.p[0]),
		North: float64(f.p[1]),
		Up:    float64(f.p[2]),
	})

	proj := f.rail.ClosestPoint(float32(lla.Lat), float32(lla.Lon))
	if proj.DistM >= f.tune.RailSnapGateM {
		return
	}

	snapped := geo.LLA{Lat: float64(proj.Lat), Lon: float64(proj.Lon), Alt: lla.Alt}
	enu := geo.ToENU(f.initLLA, snapped)
	f.p = linalg.Vec3{float32(enu.East), float32(enu.North), f.p[2]}

	if !f.inTunnel || proj.SegmentIndex < 0 {
		return
	}

	east, north, ok := f.rail.SegmentDirection(proj.SegmentIndex)
	if !ok {
		return
	}
	railHeading := float32(math.Atan2(float64(east), float64(north)))

	euler := linalg.RotationToEuler(f.r)
	deltaPsi := wrapPi(railHeading - euler.Yaw)
	newYaw := euler.Yaw + f.tune.HeadingSmoothingFactor*deltaPsi

	f.r = linalg.EulerToRotation(linalg.Euler{Roll: euler.Roll, Pitch: euler.Pitch, Yaw: newYaw}).Orthonormalize()
}

// wrapPi wraps an angle in radians to [-pi, pi].
func wrapPi(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a > math.Pi {
		a -= twoPi
	}
	for a < -math.Pi {
		a += twoPi
	}
	return a
}
