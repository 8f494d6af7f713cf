// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_computer/internal/config"
	"github.com/relabs-tech/inertial_computer/internal/gps"
	"github.com/relabs-tech/inertial_computer/internal/gpsio"
	"github.com/relabs-tech/inertial_computer/internal/sensors"
)

// RunGPSProducer opens the GPS source and republishes each decoded fix
// as JSON to MQTT, for field diagnostics independent of the fused
// producer. Grounded on the teacher's gps_producer.go serial+NMEA loop.
func RunGPSProducer() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("gps_producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	var (
		src gps.Source
		err error
	)
	if cfg.GPSReplayFile != "" {
		src, err = gpsio.NewFileSource(cfg.GPSReplayFile)
	} else {
		src, err = gpsio.NewSerialSource(cfg.GPSSerialPort, cfg.GPSBaudRate)
	}
	if err != nil {
		return err
	}

	for {
		fix, err := src.Next()
		if err != nil {
			log.Printf("gps_producer: read error: %v", err)
			return err
		}

		payload, err := json.Marshal(fix)
		if err != nil {
			log.Printf("gps_producer: marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicGPS, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("gps_producer: publish error: %v", token.Error())
		}
	}
}

// RunIMURawProducer opens the hardware IMU source and republishes each
// sample as JSON to MQTT. Grounded on the teacher's imu_producer.go
// raw-telemetry loop, minus the magnetometer/barometer channels this
// domain's Sample type doesn't carry.
func RunIMURawProducer() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDIMU)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("imu_producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	src, err := sensors.GetIMUSource()
	if err != nil {
		return err
	}

	for {
		sample, err := src.Next()
		if err != nil {
			log.Printf("imu_producer: read error: %v", err)
			return err
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("imu_producer: marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicIMU, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("imu_producer: publish error: %v", token.Error())
		}
	}
}
