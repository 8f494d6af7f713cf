// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"math"

	"github.com/relabs-tech/inertial_computer/internal/geo"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// gravityCorrectionGainUpdate is the attitude correction gain applied
// once per GPS fix.
const gravityCorrectionGainUpdate = 0.02

// updateFromGps corrects position and velocity toward the GPS fix
// using a scalar Kalman gain derived from each diagonal covariance
// entry and a satellite-count-dependent measurement noise. This is
// intentionally not a Joseph-form Kalman update.
func (f *Filter) updateFromGps(fix gps.Fix) {
	enu := geo.ToENU(f.initLLA, geo.LLA{Lat: fix.Lat, Lon: fix.Lon, Alt: fix.Alt})
	z := linalg.Vec3{float32(enu.East), float32(enu.North), float32(enu.Up)}

	zHat := f.p.Add(f.r.MulVec(f.cfg.ImuToGpsLeverArm))
	residual := z.Sub(zHat)

	sats := fix.Satellites
	if sats < 1 {
		sats = 1
	}
	sigma := 5.0 / math.Sqrt(float64(sats))
	rNoise := float32(sigma * sigma)

	var kp float32
	for i := 0; i < 3; i++ {
		kp += f.cov[i][i] / (f.cov[i][i] + rNoise)
	}
	kp /= 3
	kv := 0.1 * kp

	f.p = f.p.Add(residual.Scale(kp))
	f.v = f.v.Add(residual.Scale(kv))

	for i := 0; i < 3; i++ {
		f.cov[i][i] *= (1 - kp)
		f.cov[3+i][3+i] *= (1 - kv)
		f.cov[6+i][6+i] *= 0.98
	}

	if f.haveLast {
		aBar := f.lastImu.Acc.Sub(f.accBias)
		f.applyGravityCorrection(aBar, gravityCorrectionGainUpdate)
	}

	f.t = fix.T
	f.lastGpsT = fix.T
	f.currentSatellites = fix.Satellites
	f.inTunnel = false
}
