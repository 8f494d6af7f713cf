// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eskf

import (
	"math"
	"testing"

	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
	"github.com/relabs-tech/inertial_computer/internal/rail"
)

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// TestStaticBench feeds 100 IMU samples at 100Hz with the IMU at rest,
// then a single GPS fix, and checks the initializer's output.
func TestStaticBench(t *testing.T) {
	f := New()

	for i := 0; i < 100; i++ {
		s := imu.Sample{T: float64(i) * 0.01, Acc: linalg.Vec3{0, 0, 9.81}, Gyro: linalg.Vec3{0, 0, 0}}
		if used := f.ProcessIMU(s); used != 0 {
			t.Fatalf("sample %d: expected ProcessIMU to report buffered-only (0) before init, got %d", i, used)
		}
	}

	if f.Initialized() {
		t.Fatalf("filter reports initialized before any GPS fix")
	}

	consumed := f.ProcessGPS(gps.Fix{T: 0.99, Lat: 0, Lon: 0, Alt: 0, Satellites: 12})
	if consumed != 1 {
		t.Fatalf("expected first GPS fix to be consumed (initializer), got %d", consumed)
	}
	if !f.Initialized() {
		t.Fatalf("expected filter initialized after first GPS fix")
	}

	st := f.State()
	if abs32(st.Euler.Yaw) > 1e-4 {
		t.Fatalf("expected yaw ~= 0 at init (gauge), got %v", st.Euler.Yaw)
	}
	if abs32(st.GyroBias[0]) > 1e-6 || abs32(st.GyroBias[1]) > 1e-6 || abs32(st.GyroBias[2]) > 1e-6 {
		t.Fatalf("expected ~zero gyro bias, got %v", st.GyroBias)
	}

	predictedSpecificForce := st.Rotation.MulVec(linalg.Vec3{0, 0, 9.81}).Add(f.cfg.Gravity)
	if predictedSpecificForce.Norm() > 0.05 {
		t.Fatalf("expected |R*g_meas + gravity| < 0.05, got %v (%v)", predictedSpecificForce.Norm(), predictedSpecificForce)
	}
}

// initializedStaticFilter returns a filter initialized exactly like
// TestStaticBench, with R=identity, p=v=0, at initLLA (0,0,0).
func initializedStaticFilter(t *testing.T) *Filter {
	t.Helper()
	f := New()
	for i := 0; i < 20; i++ {
		f.ProcessIMU(imu.Sample{T: float64(i) * 0.01, Acc: linalg.Vec3{0, 0, 9.81007}, Gyro: linalg.Vec3{0, 0, 0}})
	}
	if f.ProcessGPS(gps.Fix{T: 0.19, Lat: 0, Lon: 0, Alt: 0, Satellites: 12}) != 1 {
		t.Fatalf("expected initializer to consume the seeding GPS fix")
	}
	return f
}

// TestStraightDrive drives a constant 1 m/s^2 eastward acceleration with
// GPS fixes every second exactly consistent with the analytic
// trajectory, and checks the filter tracks it.
func TestStraightDrive(t *testing.T) {
	f := initializedStaticFilter(t)

	// A short window: the gravity correction is gated only on accel
	// magnitudes (|accel| vs |gravity| and the spread of recent |accel|
	// samples), not on direction, so a sustained
	// 1 m/s^2 acceleration slowly biases attitude toward the net
	// specific-force direction (a known simplification, not a bug).
	// Over a few seconds that bias is negligible next to the
	// tolerances below; this test checks the core predict/update loop,
	// not long-horizon attitude drift under sustained acceleration.
	const dt = 0.01
	const durationSec = 3.0
	steps := int(durationSec / dt)

	accWithGravity := linalg.Vec3{1, 0, 9.81007} // 1 m/s^2 east + gravity reaction

	t0 := 0.19
	for i := 1; i <= steps; i++ {
		tt := t0 + float64(i)*dt
		f.ProcessIMU(imu.Sample{T: tt, Acc: accWithGravity, Gyro: linalg.Vec3{0, 0, 0}})

		// GPS fix every ~1s, consistent with x(t)=0.5*t^2, v=t.
		if i%100 == 0 {
			elapsed := float64(i) * dt
			east := 0.5 * elapsed * elapsed
			lla := enuToLLAForTest(east, 0, 0)
			f.ProcessGPS(gps.Fix{T: tt, Lat: lla.Lat, Lon: lla.Lon, Alt: lla.Alt, Satellites: 12})
		}
	}

	st := f.State()
	wantPos := float32(0.5 * durationSec * durationSec)
	wantVel := float32(durationSec)

	if abs32(st.Position[0]-wantPos) > 5.0 {
		t.Fatalf("east position: got %v, want ~%v", st.Position[0], wantPos)
	}
	if abs32(st.Position[1]) > 5.0 || abs32(st.Position[2]) > 5.0 {
		t.Fatalf("north/up position should stay ~0, got %v", st.Position)
	}
	if abs32(st.Velocity[0]-wantVel) > 1.0 {
		t.Fatalf("east velocity: got %v, want ~%v", st.Velocity[0], wantVel)
	}
}

// enuToLLAForTest mirrors internal/geo's equirectangular inverse around
// (0,0,0) inline rather than calling geo.ToLLA (keeps this test
// self-contained and easy to hand-verify).
func enuToLLAForTest(east, north, up float64) struct{ Lat, Lon, Alt float64 } {
	const re = 6_371_000.0
	const degToRad = math.Pi / 180
	lat := (north / re) / degToRad
	lon := (east / re) / degToRad // cos(lat0=0) == 1
	return struct{ Lat, Lon, Alt float64 }{Lat: lat, Lon: lon, Alt: up}
}

// TestTunnelFlagPredicate checks that InTunnel only flips on once a GPS
// fix has been seen and the configured tunnel threshold has elapsed
// since the last one.
func TestTunnelFlagPredicate(t *testing.T) {
	f := initializedStaticFilter(t)
	if f.State().InTunnel {
		t.Fatalf("should not be in tunnel immediately after init")
	}

	// Advance time by less than the tunnel threshold: still not in tunnel.
	f.ProcessIMU(imu.Sample{T: f.t + 2.0, Acc: linalg.Vec3{0, 0, 9.81007}, Gyro: linalg.Vec3{}})
	if f.State().InTunnel {
		t.Fatalf("should not be in tunnel after only 2s without GPS")
	}

	// Advance past the default 5s threshold.
	f.ProcessIMU(imu.Sample{T: f.t + 4.0, Acc: linalg.Vec3{0, 0, 9.81007}, Gyro: linalg.Vec3{}})
	if !f.State().InTunnel {
		t.Fatalf("should be in tunnel after >5s without GPS")
	}
}

// TestLowSatelliteSnap checks the default 20m rail-snap gate: a
// position 15m off-track snaps onto the rail, one 25m off-track is
// left alone.
func TestLowSatelliteSnap(t *testing.T) {
	f := initializedStaticFilter(t)
	f.LoadRailNodes([]rail.Node{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}})
	f.currentSatellites = 5 // below the low-satellite threshold (8)

	f.p = linalg.Vec3{0, 15, 0} // ~15m north of the rail line
	f.applyRailFusion()
	if abs32(f.p[1]) > 1.0 {
		t.Fatalf("expected snap to pull north offset near 0, got %v", f.p)
	}

	f.p = linalg.Vec3{0, 25, 0} // ~25m north of the rail line
	f.applyRailFusion()
	if abs32(f.p[1]-25) > 1.0 {
		t.Fatalf("expected no snap at 25m offset, position moved to %v", f.p)
	}
}

// TestHeadingWrap checks wrapPi folds a heading difference back into
// [-pi, pi] (see DESIGN.md for a note on the sign convention used
// here).
func TestHeadingWrap(t *testing.T) {
	railHeading := float32(3.0)
	yaw := float32(-3.0)
	got := wrapPi(railHeading - yaw)
	want := float32(-0.283185)
	if abs32(got-want) > 1e-3 {
		t.Fatalf("wrapPi(6.0) = %v, want ~%v", got, want)
	}
}

// TestRailHeadingRealignment exercises the tunnel-mode yaw pull toward
// the rail segment heading.
func TestRailHeadingRealignment(t *testing.T) {
	f := initializedStaticFilter(t)
	f.LoadRailNodes([]rail.Node{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}) // due-east segment
	f.currentSatellites = 4
	f.inTunnel = true
	f.p = linalg.Vec3{0, 10, 0}

	// Start with yaw away from the east-pointing track heading (~pi/2).
	f.r = linalg.EulerToRotation(linalg.Euler{Yaw: 0})
	startYaw := linalg.RotationToEuler(f.r).Yaw

	f.applyRailFusion()

	endYaw := linalg.RotationToEuler(f.r).Yaw
	// East segment direction is (east>0, north~0) so its atan2(east,north)
	// heading is near +pi/2; realignment here should move yaw toward
	// that heading by heading_smoothing_factor, i.e. not stay put.
	if abs32(endYaw-startYaw) < 1e-6 {
		t.Fatalf("expected yaw to move during tunnel realignment, stayed at %v", startYaw)
	}
}

// TestResetIdempotence checks that Reset on a used filter produces the
// same state as a freshly constructed one with the same config.
func TestResetIdempotence(t *testing.T) {
	cfg := DefaultConfig()
	fresh := New()
	fresh.SetConfig(cfg)

	used := initializedStaticFilter(t)
	used.SetConfig(cfg)
	used.LoadRailNodes(nil)
	used.Reset()

	if used.initialized != fresh.initialized {
		t.Fatalf("initialized mismatch after reset")
	}
	if used.p != fresh.p || used.v != fresh.v || used.r != fresh.r {
		t.Fatalf("pose mismatch after reset: p=%v v=%v r=%v", used.p, used.v, used.r)
	}
	if used.buf.count != fresh.buf.count {
		t.Fatalf("buffer count mismatch after reset: %v vs %v", used.buf.count, fresh.buf.count)
	}
	if used.lastGpsT != fresh.lastGpsT || used.currentSatellites != fresh.currentSatellites || used.inTunnel != fresh.inTunnel {
		t.Fatalf("gps bookkeeping mismatch after reset")
	}
	if used.rail.Count() != fresh.rail.Count() {
		t.Fatalf("rail node count mismatch after reset: %d vs %d", used.rail.Count(), fresh.rail.Count())
	}
}

// TestCovarianceInvariants is a smoke test checking the covariance
// diagonal stays non-negative after ordinary IMU processing.
func TestCovarianceInvariants(t *testing.T) {
	f := initializedStaticFilter(t)
	for i := 0; i < 50; i++ {
		f.ProcessIMU(imu.Sample{T: f.t + 0.01, Acc: linalg.Vec3{0.1, 0, 9.81007}, Gyro: linalg.Vec3{0.001, 0, 0}})
	}
	diag := f.cov.Diagonal()
	for i, v := range diag {
		if v < 0 {
			t.Fatalf("cov[%d][%d] = %v, expected non-negative", i, i, v)
		}
	}
}

// TestOrthonormalAfterProcessing checks R stays orthonormal with a
// positive determinant after sustained IMU processing.
func TestOrthonormalAfterProcessing(t *testing.T) {
	f := initializedStaticFilter(t)
	for i := 0; i < 200; i++ {
		f.ProcessIMU(imu.Sample{
			T:    f.t + 0.01,
			Acc:  linalg.Vec3{0.2, -0.1, 9.81007},
			Gyro: linalg.Vec3{0.01, -0.02, 0.03},
		})
	}
	r := f.r
	check := r.Transpose().Mul(r)
	id := linalg.Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if abs32(check[i][j]-id[i][j]) > 1e-3 {
				t.Fatalf("R^T R != I after processing at (%d,%d): %v", i, j, check)
			}
		}
	}
	if r.Det() <= 0 {
		t.Fatalf("det(R) <= 0 after processing: %v", r.Det())
	}
}
