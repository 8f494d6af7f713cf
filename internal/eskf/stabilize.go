// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import "github.com/relabs-tech/inertial_computer/internal/linalg"

// motionGateMS2 bounds how far |aBar| may be from |gravity| before the
// gravity correction is gated off as non-quiescent motion.
const motionGateMS2 = 2.0

// deviationGateMS2 bounds the mean-absolute deviation of recent
// |acc| samples before the correction is gated off as dynamic motion.
const deviationGateMS2 = 0.5

// applyGravityCorrection bleeds off gyro-drift attitude error using the
// accelerometer as a slow gravity reference, gated off whenever the
// vehicle looks like it's accelerating rather than sitting still, with
// a measured specific force close to gravity in magnitude.
func (f *Filter) applyGravityCorrection(aBar linalg.Vec3, gain float32) {
	g := f.cfg.Gravity
	if absf(aBar.Norm()-g.Norm()) > motionGateMS2 {
		return
	}

	if f.buf.count >= minInitSamples {
		window := f.buf.lastN(20)
		var meanMag float32
		for _, s := range window {
			meanMag += s.Acc.Norm()
		}
		meanMag /= float32(len(window))

		var meanDev float32
		for _, s := range window {
			meanDev += absf(s.Acc.Norm() - meanMag)
		}
		meanDev /= float32(len(window))

		if meanDev > deviationGateMS2 {
			return
		}
	}

	speed := f.v.Norm()
	var vf float32
	switch {
	case speed < 1:
		vf = 2.0
	case speed < 5:
		vf = 1.0
	case speed < 15:
		vf = 0.5
	default:
		vf = 0.2
	}
	effectiveGain := gain * vf

	m := aBar.Normalize()
	e := f.r.Transpose().MulVec(g).Normalize()
	delta := m.Cross(e)

	correction := linalg.Identity3().Add(linalg.Skew(delta.Scale(effectiveGain)))
	f.r = f.r.Mul(correction).Orthonormalize()
}
