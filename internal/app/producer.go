// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_computer/internal/config"
	"github.com/relabs-tech/inertial_computer/internal/eskf"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/gpsio"
	"github.com/relabs-tech/inertial_computer/internal/imu"
	"github.com/relabs-tech/inertial_computer/internal/linalg"
	"github.com/relabs-tech/inertial_computer/internal/rail"
	"github.com/relabs-tech/inertial_computer/internal/sensors"
)

// imuTick and gpsTick tag which stream a fused reading arrived from,
// so the single filter goroutine can serialize both streams into the
// one *eskf.Filter instance, which is not safe for concurrent use.
type imuTick struct{ sample imu.Sample }
type gpsTick struct{ fix gps.Fix }

// RunProducer owns one *eskf.Filter, pumps IMU and GPS readings into it
// as they arrive, and publishes the resulting eskf.State snapshot as
// JSON on cfg.TopicState. Grounded on the teacher's RunInertialProducer
// ticker-driven MQTT publish loop.
func RunProducer() error {
	cfg := config.Get()
	log.Println("starting eskf producer")

	filter := eskf.New()
	filter.SetConfig(eskf.Config{
		AccNoise:      float32(cfg.AccNoise),
		GyroNoise:     float32(cfg.GyroNoise),
		AccBiasNoise:  float32(cfg.AccBiasNoise),
		GyroBiasNoise: float32(cfg.GyroBiasNoise),
		Gravity:       vec3(cfg.GravityX, cfg.GravityY, cfg.GravityZ),
		ImuToGpsLeverArm: vec3(cfg.LeverArmX, cfg.LeverArmY, cfg.LeverArmZ),
	})
	filter.SetTunables(eskf.Tunables{
		TunnelThresholdSec:     cfg.TunnelThresholdSec,
		HeadingSmoothingFactor: float32(cfg.HeadingSmoothingFactor),
		RailSnapGateM:          float32(cfg.RailSnapGateM),
		LowSatelliteThreshold:  cfg.LowSatelliteThreshold,
	})

	if cfg.RailNodesCSVPath != "" {
		nodes, err := rail.LoadNodesCSV(cfg.RailNodesCSVPath)
		if err != nil {
			log.Printf("producer: rail nodes load error (continuing without rail snap): %v", err)
		} else {
			filter.LoadRailNodes(nodes)
			log.Printf("producer: loaded %d rail nodes from %s", len(nodes), cfg.RailNodesCSVPath)
		}
	}

	imuSrc, err := sensors.GetIMUSource()
	if err != nil {
		return err
	}

	var gpsSrc gps.Source
	if cfg.GPSReplayFile != "" {
		gpsSrc, err = gpsio.NewFileSource(cfg.GPSReplayFile)
	} else {
		gpsSrc, err = gpsio.NewSerialSource(cfg.GPSSerialPort, cfg.GPSBaudRate)
	}
	if err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	ticks := make(chan any, 64)

	go func() {
		for {
			s, err := imuSrc.Next()
			if err != nil {
				log.Printf("producer: IMU read error: %v", err)
				return
			}
			ticks <- imuTick{sample: s}
		}
	}()

	go func() {
		for {
			f, err := gpsSrc.Next()
			if err != nil {
				log.Printf("producer: GPS read error: %v", err)
				return
			}
			ticks <- gpsTick{fix: f}
		}
	}()

	for t := range ticks {
		switch v := t.(type) {
		case imuTick:
			filter.ProcessIMU(v.sample)
		case gpsTick:
			filter.ProcessGPS(v.fix)
		}

		if !filter.Initialized() {
			continue
		}

		payload, err := json.Marshal(filter.State())
		if err != nil {
			log.Printf("producer: state marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicState, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: MQTT publish error: %v", token.Error())
		}
	}

	return nil
}

func vec3(x, y, z float64) linalg.Vec3 {
	return linalg.Vec3{float32(x), float32(y), float32(z)}
}
