// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/inertial_computer/internal/imu"
)

// manager wraps a single imu.Source behind a lazily-initialized
// singleton, the way the teacher's IMUManager wraps its left/right
// MPU9250 pair.
type manager struct {
	mu          sync.RWMutex
	source      imu.Source
	initialized bool
}

var (
	defaultManager *manager
	managerOnce    sync.Once
)

// GetIMUSource returns the singleton hardware IMU source, initializing
// it on first use.
func GetIMUSource() (imu.Source, error) {
	managerOnce.Do(func() {
		defaultManager = &manager{}
	})

	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()

	if defaultManager.initialized {
		return defaultManager.source, nil
	}

	src, err := NewIMUSource()
	if err != nil {
		return nil, fmt.Errorf("IMU source initialization failed: %w", err)
	}

	defaultManager.source = src
	defaultManager.initialized = true
	return defaultManager.source, nil
}
