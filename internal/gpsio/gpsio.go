// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gpsio produces gps.Fix values from an NMEA stream, either a
// live serial-port receiver or a plain-text file replay, mirroring the
// teacher's hardware-source/mock-source split in internal/sensors and
// internal/orientation.
package gpsio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_computer/internal/gps"
)

// accumulator assembles a gps.Fix out of RMC/GGA/GSA sentences the way
// the teacher's gps_producer.go accumulates Position/Velocity/Quality
// across NMEA sentence types, except here the pieces feed a single
// gps.Fix rather than separate MQTT topics.
type accumulator struct {
	have       bool
	fix        gps.Fix
	satellites int
}

func (a *accumulator) apply(sentence nmea.Sentence) (gps.Fix, bool) {
	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		a.fix.Lat = m.Latitude
		a.fix.Lon = m.Longitude
		a.have = true
		return a.fix, false

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		a.fix.Lat = m.Latitude
		a.fix.Lon = m.Longitude
		a.fix.Alt = m.Altitude
		a.fix.HDOP = m.HDOP
		a.satellites = m.NumSatellites
		a.fix.Satellites = a.satellites
		a.have = true
		// GGA is the sentence that carries a complete lat/lon/alt/sat
		// reading in one shot; treat it as the trigger to emit a fix.
		return a.fix, true

	case nmea.TypeGSA:
		m := sentence.(nmea.GSA)
		a.satellites = len(m.SatellitesUsed)
		a.fix.Satellites = a.satellites
		return a.fix, false

	default:
		return a.fix, false
	}
}

// serialSource reads NMEA sentences from a live serial-port GPS
// receiver, grounded on the teacher's RunGPSProducer serial-open +
// bufio.Reader + adrianmo/go-nmea loop.
type serialSource struct {
	reader *bufio.Reader
	closer io.Closer
	acc    accumulator
	t      float64
	tick   float64
}

// NewSerialSource opens portName at baud and decodes NMEA sentences
// from it as they arrive.
func NewSerialSource(portName string, baud int) (gps.Source, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("gpsio: opening %s: %w", portName, err)
	}

	return &serialSource{
		reader: bufio.NewReader(port),
		closer: port,
		tick:   1.0,
	}, nil
}

func (s *serialSource) Next() (gps.Fix, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return gps.Fix{}, fmt.Errorf("gpsio: serial read: %w", err)
		}

		fix, ready := s.decodeLine(line)
		if ready {
			return fix, nil
		}
	}
}

func (s *serialSource) decodeLine(line string) (gps.Fix, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return gps.Fix{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return gps.Fix{}, false
	}

	fix, ready := s.acc.apply(sentence)
	if !ready {
		return gps.Fix{}, false
	}

	fix.T = s.t
	s.t += s.tick
	return fix, true
}

func (s *serialSource) Close() error {
	return s.closer.Close()
}

// fileSource replays NMEA sentences from a plain text file, one
// sentence per line, for offline testing and simulation without real
// hardware.
type fileSource struct {
	scanner *bufio.Scanner
	file    *os.File
	acc     accumulator
	t       float64
	tick    float64
}

// NewFileSource opens path and replays its NMEA sentences in order.
func NewFileSource(path string) (gps.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gpsio: opening replay file %s: %w", path, err)
	}

	return &fileSource{
		scanner: bufio.NewScanner(f),
		file:    f,
		tick:    1.0,
	}, nil
}

func (s *fileSource) Next() (gps.Fix, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		fix, ready := s.acc.apply(sentence)
		if !ready {
			continue
		}

		fix.T = s.t
		s.t += s.tick
		return fix, nil
	}

	if err := s.scanner.Err(); err != nil {
		return gps.Fix{}, fmt.Errorf("gpsio: replay file read: %w", err)
	}
	return gps.Fix{}, io.EOF
}

func (s *fileSource) Close() error {
	return s.file.Close()
}
