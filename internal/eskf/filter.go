// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"github.com/relabs-tech/inertial_computer/internal/geo"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
	"github.com/relabs-tech/inertial_computer/internal/rail"
)

// minInitSamples is the minimum buffered IMU sample count before the
// first GPS fix can initialize the filter.
const minInitSamples = 10

// Filter is the error-state Kalman filter. It owns all of its memory at
// construction time (fixed-capacity IMU ring and rail node array) and
// performs no allocation on its hot path. It is not safe for concurrent
// use; callers driving it from multiple goroutines must serialize.
type Filter struct {
	cfg  Config
	tune Tunables

	initialized bool
	initLLA     geo.LLA

	t float64

	p, v linalg.Vec3
	r    linalg.Mat3

	accBias, gyroBias linalg.Vec3

	cov linalg.Mat15

	buf imuRing

	lastImu    imu.Sample
	haveLast   bool

	lastGpsT          float64
	currentSatellites int
	inTunnel          bool

	rail *rail.Index
}

// New returns a filter in the uninitialized state with default
// configuration and tunables.
func New() *Filter {
	f := &Filter{
		cfg:  DefaultConfig(),
		tune: DefaultTunables(),
		r:    linalg.Identity3(),
		rail: rail.NewIndex(),
	}
	return f
}

// Reset returns the filter to the uninitialized state. Configuration
// (Config, Tunables) and any loaded rail polyline are preserved; all
// processing state (buffers, pose, covariance, biases, tunnel/GPS
// bookkeeping) is cleared, matching a freshly constructed filter with
// the same configuration and rail nodes.
func (f *Filter) Reset() {
	preservedCfg := f.cfg
	preservedTune := f.tune
	preservedRail := f.rail

	*f = Filter{
		cfg:  preservedCfg,
		tune: preservedTune,
		r:    linalg.Identity3(),
		rail: preservedRail,
	}
}

// SetConfig replaces the noise model and sensor-mounting configuration.
// It does not affect processing state.
func (f *Filter) SetConfig(cfg Config) {
	f.cfg = cfg
}

// SetTunables replaces the tunnel/rail-snap tunables documented as
// living outside Config.
func (f *Filter) SetTunables(t Tunables) {
	f.tune = t
}

// LoadRailNodes stores the rail polyline, truncated to rail.MaxNodes.
func (f *Filter) LoadRailNodes(nodes []rail.Node) {
	f.rail.SetNodes(nodes)
}

// Initialized reports whether the filter has completed initialization.
func (f *Filter) Initialized() bool {
	return f.initialized
}

// ProcessIMU buffers s and, once initialized, runs prediction,
// attitude stabilization and rail fusion. It returns 1 if s was used
// for prediction (filter already initialized), 0 if it was only
// buffered.
func (f *Filter) ProcessIMU(s imu.Sample) int {
	f.buf.push(s)

	if !f.initialized {
		f.lastImu = s
		f.haveLast = true
		return 0
	}

	if f.haveLast {
		f.predict(f.lastImu, s)
	}
	f.lastImu = s
	f.haveLast = true
	f.t = s.T

	f.updateTunnelFlag()

	if f.rail.Count() >= 2 && f.currentSatellites < f.tune.LowSatelliteThreshold {
		f.applyRailFusion()
	}

	return 1
}

// ProcessGPS consumes a GPS fix. Before initialization, it triggers the
// gravity/gyro-bias initializer once at least minInitSamples IMU
// samples are buffered, returning 1 on success or 0 if still waiting.
// After initialization, it runs the GPS updater and always returns 1.
func (f *Filter) ProcessGPS(fix gps.Fix) int {
	if !f.initialized {
		if f.buf.count < minInitSamples {
			return 0
		}
		f.initializeFrom(fix)
		return 1
	}

	f.updateFromGps(fix)
	f.updateTunnelFlag()
	return 1
}

// State returns a snapshot of the current estimate.
func (f *Filter) State() State {
	euler := linalg.RotationToEuler(f.r)
	lla := f.initLLA
	if f.initialized {
		lla = geo.ToLLA(f.initLLA, geo.ENU{
			East:  float64(f.p[0]),
			North: float64(f.p[1]),
			Up:    float64(f.p[2]),
		})
	}
	return State{
		T:                 f.t,
		Position:          f.p,
		Velocity:          f.v,
		Rotation:          f.r,
		AccBias:           f.accBias,
		GyroBias:          f.gyroBias,
		Cov:               f.cov,
		Lat:               lla.Lat,
		Lon:               lla.Lon,
		Alt:               lla.Alt,
		Euler:             euler,
		Initialized:       f.initialized,
		InTunnel:          f.inTunnel,
		CurrentSatellites: f.currentSatellites,
		LastGpsT:          f.lastGpsT,
	}
}

// updateTunnelFlag sets inTunnel iff a GPS fix has been seen and the
// time since the last one exceeds the configured tunnel threshold.
func (f *Filter) updateTunnelFlag() {
	f.inTunnel = f.lastGpsT > 0 && (f.t-f.lastGpsT) > f.tune.TunnelThresholdSec
}
