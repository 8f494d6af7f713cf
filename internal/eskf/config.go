// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import "github.com/relabs-tech/inertial_computer/internal/linalg"

// Config holds the filter's noise model and sensor-mounting parameters.
type Config struct {
	AccNoise      float32 // m/s^2
	GyroNoise     float32 // rad/s
	AccBiasNoise  float32
	GyroBiasNoise float32

	Gravity linalg.Vec3 // ENU, default (0,0,-9.81007)

	// ImuToGpsLeverArm is the fixed offset from the IMU origin to the
	// GPS antenna, expressed in the IMU body frame.
	ImuToGpsLeverArm linalg.Vec3
}

// DefaultConfig returns reasonable default noise and mounting values
// for a vehicle-mounted MEMS IMU with the GPS antenna near the IMU
// origin.
func DefaultConfig() Config {
	return Config{
		AccNoise:         0.5,
		GyroNoise:        0.01,
		AccBiasNoise:     0.01,
		GyroBiasNoise:    0.001,
		Gravity:          linalg.Vec3{0, 0, -9.81007},
		ImuToGpsLeverArm: linalg.Vec3{0, 0, 0},
	}
}

// Tunables collects the filter's behavioral knobs: when to declare a
// GPS outage a tunnel, how aggressively to pull heading toward the
// rail during one, and when low satellite count should trigger rail
// snapping at all.
type Tunables struct {
	TunnelThresholdSec     float64 // default 5.0
	HeadingSmoothingFactor float32 // default 0.5
	RailSnapGateM          float32 // default 20
	LowSatelliteThreshold  int     // default 8
}

// DefaultTunables returns reasonable default tunnel/rail-snap behavior.
func DefaultTunables() Tunables {
	return Tunables{
		TunnelThresholdSec:     5.0,
		HeadingSmoothingFactor: 0.5,
		RailSnapGateM:          20,
		LowSatelliteThreshold:  8,
	}
}
