// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"github.com/relabs-tech/inertial_computer/internal/geo"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// zUp is +z-hat, the ENU up axis.
var zUp = linalg.Vec3{0, 0, 1}

// initCovDiag is the seed covariance diagonal: 1 m^2 position, 0.1
// (m/s)^2 velocity, 0.1 rad^2 attitude, 0.01 (m/s^2)^2 accel bias and
// 0.01 (rad/s)^2 gyro bias, in the fixed [dp,dv,dtheta,dba,dbg]
// ordering.
var initCovDiag = [15]float32{
	1, 1, 1,
	0.1, 0.1, 0.1,
	0.1, 0.1, 0.1,
	0.01, 0.01, 0.01,
	0.01, 0.01, 0.01,
}

// initializeFrom seeds position, attitude, biases and covariance from
// the buffered IMU samples and the first GPS fix: accelerometer mean
// gives the gravity direction (hence initial attitude), gyroscope mean
// gives the initial gyro bias, and the GPS fix anchors the origin.
func (f *Filter) initializeFrom(fix gps.Fix) {
	f.initLLA = geo.LLA{Lat: fix.Lat, Lon: fix.Lon, Alt: fix.Alt}
	f.p = linalg.Vec3{}
	f.v = linalg.Vec3{}

	samples := f.buf.all()

	var accSum, gyroSum linalg.Vec3
	for _, s := range samples {
		accSum = accSum.Add(s.Acc)
		gyroSum = gyroSum.Add(s.Gyro)
	}
	n := float32(len(samples))
	gMeas := accSum.Scale(1 / n).Normalize()
	f.gyroBias = gyroSum.Scale(1 / n)
	f.accBias = linalg.Vec3{}

	f.r = rotationAligning(gMeas, zUp)

	var cov linalg.Mat15
	for i := 0; i < 15; i++ {
		cov[i][i] = initCovDiag[i]
	}
	f.cov = cov

	f.t = fix.T
	f.lastGpsT = fix.T
	f.currentSatellites = fix.Satellites
	f.inTunnel = false
	f.initialized = true
}

// rotationAligning returns the rotation matrix that maps unit vector a
// to unit vector b via the Rodrigues closed form on the cross-product
// vector v = a x b. Falls back to the identity when a and b are
// already aligned or anti-parallel beyond the formula's numerical
// reach.
func rotationAligning(a, b linalg.Vec3) linalg.Mat3 {
	c := a.Dot(b)
	if absf(c-1) < 1e-6 {
		return linalg.Identity3()
	}
	v := a.Cross(b)
	s := v.Norm()
	if s <= 1e-6 {
		return linalg.Identity3()
	}
	k := linalg.Skew(v)
	return linalg.Identity3().Add(k).Add(k.Mul(k).Scale((1 - c) / (s * s)))
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
