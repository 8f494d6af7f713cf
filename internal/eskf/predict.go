// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// gravityCorrectionGainPredict is the low-gain attitude correction
// applied every prediction step.
const gravityCorrectionGainPredict = 0.001

// predict advances the state from last to cur using mid-point
// integration of the averaged raw samples. A negative or stale dt is a
// no-op for the dynamics (the caller still advances f.t).
func (f *Filter) predict(last, cur imu.Sample) {
	dt := float32(cur.T - last.T)
	if dt < 0 {
		return
	}

	aBar := last.Acc.Add(cur.Acc).Scale(0.5).Sub(f.accBias)
	wBar := last.Gyro.Add(cur.Gyro).Scale(0.5).Sub(f.gyroBias)

	aG := f.r.MulVec(aBar).Add(f.cfg.Gravity)

	f.p = f.p.Add(f.v.Scale(dt)).Add(aG.Scale(0.5 * dt * dt))
	f.v = f.v.Add(aG.Scale(dt))

	phi := wBar.Scale(dt)
	if phi.Norm() > 1e-12 {
		f.r = f.r.Mul(linalg.AxisAngle(phi))
		f.r = f.r.Orthonormalize()
	}

	f.applyGravityCorrection(aBar, gravityCorrectionGainPredict)

	f.propagateCovariance(dt)
}

// propagateCovariance applies a simplified diagonal covariance growth:
// each state block grows independently rather than through a full
// F*P*F^T + Q sandwich.
func (f *Filter) propagateCovariance(dt float32) {
	speed := f.v.Norm()
	sigmaA := f.cfg.AccNoise
	sigmaW := f.cfg.GyroNoise
	sigmaBa := f.cfg.AccBiasNoise
	sigmaBg := f.cfg.GyroBiasNoise

	posGrowth := sigmaA*dt*dt/2 + speed*dt*0.01
	posGrowth *= posGrowth
	velGrowth := sigmaA * dt
	velGrowth *= velGrowth
	attGrowth := sigmaW * dt
	attGrowth *= attGrowth
	baGrowth := sigmaBa * sigmaBa * dt
	bgGrowth := sigmaBg * sigmaBg * dt

	for i := 0; i < 3; i++ {
		f.cov[i][i] += posGrowth
		f.cov[3+i][3+i] += velGrowth
		f.cov[6+i][6+i] += attGrowth
		f.cov[9+i][9+i] += baGrowth
		f.cov[12+i][12+i] += bgGrowth
	}
}
