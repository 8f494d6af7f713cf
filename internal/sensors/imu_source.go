// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/inertial_computer/internal/config"
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// accelScale and gyroScale convert raw MPU9250 16-bit counts to SI
// units for each configured full-scale range. Index 0-3 matches
// IMU_ACCEL_RANGE / IMU_GYRO_RANGE (±2/4/8/16 g, ±250/500/1000/2000 °/s).
var accelScale = [4]float64{
	9.80665 / 16384.0,
	9.80665 / 8192.0,
	9.80665 / 4096.0,
	9.80665 / 2048.0,
}

var gyroScale = [4]float64{
	(3.14159265358979 / 180.0) / 131.0,
	(3.14159265358979 / 180.0) / 65.5,
	(3.14159265358979 / 180.0) / 32.8,
	(3.14159265358979 / 180.0) / 16.4,
}

// hardwareIMU adapts periph.io's MPU9250 device to imu.Source,
// producing SI-unit samples instead of the teacher's raw register
// counts or roll/pitch orientation.Pose.
type hardwareIMU struct {
	dev        *mpu9250.MPU9250
	accelScale float64
	gyroScale  float64
	t0         float64
	tick       float64
}

// NewIMUSource initializes the MPU9250 over SPI and returns an
// imu.Source reading it.
func NewIMUSource() (imu.Source, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if err := dev.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", cfg.IMUGyroRange, []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	if err := dev.SetDLPFMode(cfg.IMUDLPFConfig); err != nil {
		return nil, fmt.Errorf("IMU: set DLPF config: %w", err)
	}
	if err := dev.SetSampleRateDivider(cfg.IMUSampleRateDiv); err != nil {
		return nil, fmt.Errorf("IMU: set sample rate divider: %w", err)
	}
	if err := dev.SetAccelDLPF(cfg.IMUAccelDLPF); err != nil {
		return nil, fmt.Errorf("IMU: set accel DLPF: %w", err)
	}

	if err := dev.Calibrate(); err != nil {
		log.Printf("IMU: calibration failed (continuing uncalibrated): %v", err)
	} else {
		log.Println("IMU: calibration complete")
	}

	return &hardwareIMU{
		dev:        dev,
		accelScale: accelScale[cfg.IMUAccelRange],
		gyroScale:  gyroScale[cfg.IMUGyroRange],
		tick:       float64(cfg.IMUSampleRateDiv+1) / 1000.0,
	}, nil
}

// Next reads one accelerometer+gyroscope sample and converts it to SI
// units. There is no hardware timestamp on this part, so T advances by
// the configured sample interval each call.
func (s *hardwareIMU) Next() (imu.Sample, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}
	gx, err := s.dev.GetRotationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.dev.GetRotationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.dev.GetRotationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	t := s.t0
	s.t0 += s.tick

	return imu.Sample{
		T:    t,
		Acc:  linalg.Vec3{float32(float64(ax) * s.accelScale), float32(float64(ay) * s.accelScale), float32(float64(az) * s.accelScale)},
		Gyro: linalg.Vec3{float32(float64(gx) * s.gyroScale), float32(float64(gy) * s.gyroScale), float32(float64(gz) * s.gyroScale)},
	}, nil
}
