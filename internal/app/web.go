// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_computer/internal/config"
	"github.com/relabs-tech/inertial_computer/internal/eskf"
)

// RunWeb serves the latest fused state as JSON and streams it to
// websocket clients, grounded on the teacher's web.go (MQTT subscriber
// feeding an http.Server) but trimmed to one snapshot endpoint instead
// of the per-sensor API surface and calibration protocol that had no
// analogue in this domain.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu       sync.RWMutex
		last     eskf.State
		haveLast bool
	)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	hub := newStateHub()

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st eskf.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("web: state unmarshal error: %v", err)
			return
		}
		mu.Lock()
		last = st
		haveLast = true
		mu.Unlock()
		hub.broadcast(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicState)

	http.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveLast {
			http.Error(w, "no state data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(last); err != nil {
			log.Printf("web: state JSON encode error: %v", err)
		}
	})

	http.HandleFunc("/ws", hub.handle)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// stateHub fans the latest state payload out to connected websocket
// clients, grounded on the teacher's calibration websocket protocol in
// web.go but reduced to a plain broadcast (no request/response frames,
// since there is nothing here for a client to command).
type stateHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newStateHub() *stateHub {
	return &stateHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *stateHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain and discard client frames; this endpoint is snapshot-push
	// only. Reading keeps the connection's read deadline serviced and
	// lets us detect the client going away.
	conn.SetReadDeadline(time.Now().Add(24 * time.Hour))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *stateHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("web: websocket write error: %v", err)
		}
	}
}
