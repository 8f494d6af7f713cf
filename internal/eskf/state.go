// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package eskf implements the error-state Kalman filter that fuses IMU
// and GPS measurements into a pose estimate, with a railway-aware
// rail-snap and heading-realignment mode for GPS outages. This package
// is the filter core and has no dependency on sensor I/O, transport,
// or logging.
package eskf

import (
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// State is a read-only snapshot of the filter's current estimate.
type State struct {
	T float64 // timestamp of the last incorporated sample

	Position linalg.Vec3 // G_p_I, ENU meters
	Velocity linalg.Vec3 // G_v_I, ENU m/s
	Rotation linalg.Mat3 // G_R_I, IMU->ENU

	AccBias  linalg.Vec3
	GyroBias linalg.Vec3

	Cov linalg.Mat15

	Lat, Lon, Alt float64
	Euler         linalg.Euler // roll, pitch, yaw, radians

	Initialized       bool
	InTunnel          bool
	CurrentSatellites int
	LastGpsT          float64
}
