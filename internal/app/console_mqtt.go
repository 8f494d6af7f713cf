// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_computer/internal/config"
	"github.com/relabs-tech/inertial_computer/internal/eskf"
)

// RunConsoleMQTT subscribes to the fused-state topic and prints a
// one-line status for every snapshot, the teacher's console_mqtt.go
// pattern adapted from a roll/pitch/yaw Pose to an eskf.State.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st eskf.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}

		status := "OK"
		if st.InTunnel {
			status = "TUNNEL"
		}

		fmt.Printf(
			"lat=%10.6f lon=%11.6f alt=%7.2f yaw=%6.3f sats=%2d %s\n",
			st.Lat, st.Lon, st.Alt, st.Euler.Yaw, st.CurrentSatellites, status,
		)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console subscribed to MQTT topic %s", cfg.TopicState)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console shutting down")
	client.Disconnect(250)
	return nil
}
