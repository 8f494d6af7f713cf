// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imu defines the IMU sample type the filter core consumes.
// Producing a Sample from real hardware is an external collaborator's
// job (see internal/sensors); this package only carries the data.
package imu

import "github.com/relabs-tech/inertial_computer/internal/linalg"

// Sample is a single accelerometer+gyroscope reading in SI units,
// sensor frame.
type Sample struct {
	T    float64     `json:"t"`    // seconds, monotonic
	Acc  linalg.Vec3 `json:"acc"`  // specific force, m/s^2
	Gyro linalg.Vec3 `json:"gyro"` // angular rate, rad/s
}

// Source is anything that can deliver a stream of IMU samples.
type Source interface {
	Next() (Sample, error)
}
