// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/inertial_computer/internal/eskf"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
)

// demoSource feeds a synthetic stationary IMU into a local filter: no
// MQTT, no hardware, just a sanity check that the core loop runs end to
// end. Grounded on the teacher's RunMockConsole, which did
// the same thing for orientation.NewMockSource() before any real IMU
// existed.
type demoSource struct {
	t float64
}

func (d *demoSource) nextIMU() (t float64, acc, gyro linalg.Vec3) {
	t = d.t
	d.t += 0.01
	return t, linalg.Vec3{0, 0, 9.81007}, linalg.Vec3{0, 0, 0}
}

// RunConsole runs a local, MQTT-free demo: a stationary filter printing
// its own state once a second, useful to sanity-check a build without a
// broker or any hardware attached.
func RunConsole() error {
	filter := eskf.New()
	src := &demoSource{}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	logTicker := time.NewTicker(time.Second)
	defer logTicker.Stop()

	for {
		select {
		case <-ticker.C:
			t, acc, gyro := src.nextIMU()
			filter.ProcessIMU(imu.Sample{T: t, Acc: acc, Gyro: gyro})

		case <-logTicker.C:
			// A fix at the origin once a second initializes the filter
			// and then runs the GPS updater on every tick.
			filter.ProcessGPS(gps.Fix{T: src.t, Satellites: 12})
			st := filter.State()
			fmt.Printf(
				"t=%.2f initialized=%v pos=(%.2f,%.2f,%.2f) yaw=%.3f tunnel=%v\n",
				st.T, st.Initialized, st.Position[0], st.Position[1], st.Position[2], st.Euler.Yaw, st.InTunnel,
			)
		}
	}
}
