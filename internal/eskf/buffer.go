// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import "github.com/relabs-tech/inertial_computer/internal/imu"

// imuBufferSize bounds how many recent IMU samples the filter retains
// for the initializer and for the gravity correction's motion gate.
const imuBufferSize = 500

// imuRing is a fixed-capacity circular buffer of the most recent IMU
// samples. It never allocates after construction.
type imuRing struct {
	samples [imuBufferSize]imu.Sample
	index   int // next write slot
	count   int // valid entries, saturates at imuBufferSize

	// scratch backs lastN's returned slice so reordering the ring into
	// chronological order never allocates on the hot path.
	scratch [imuBufferSize]imu.Sample
}

// push inserts s as the newest sample.
func (r *imuRing) push(s imu.Sample) {
	r.samples[r.index] = s
	r.index = (r.index + 1) % imuBufferSize
	if r.count < imuBufferSize {
		r.count++
	}
}

// reset empties the buffer.
func (r *imuRing) reset() {
	*r = imuRing{}
}

// all returns the valid entries in chronological order (oldest first).
// Like lastN it is backed by r.scratch; callers must not retain the
// slice past the next call to lastN/all.
func (r *imuRing) all() []imu.Sample {
	return r.lastN(r.count)
}

// lastN returns up to the n most recent entries in chronological order
// (oldest first), backed by r.scratch so no allocation occurs. The
// returned slice is only valid until the next call to lastN/all.
func (r *imuRing) lastN(n int) []imu.Sample {
	if n > r.count {
		n = r.count
	}
	start := (r.index - n + imuBufferSize) % imuBufferSize
	for i := 0; i < n; i++ {
		r.scratch[i] = r.samples[(start+i)%imuBufferSize]
	}
	return r.scratch[:n]
}
