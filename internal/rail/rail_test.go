// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rail

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestFewerThanTwoNodesReturnsSentinel(t *testing.T) {
	x := NewIndex()
	proj := x.ClosestPoint(1, 2)
	if proj.Lat != 1 || proj.Lon != 2 {
		t.Fatalf("expected input point unchanged, got %+v", proj)
	}
	if proj.DistM < 1e8 {
		t.Fatalf("expected large sentinel distance, got %v", proj.DistM)
	}

	x.SetNodes([]Node{{Lat: 0, Lon: 0}})
	proj = x.ClosestPoint(1, 2)
	if proj.DistM < 1e8 {
		t.Fatalf("single node: expected sentinel distance, got %v", proj.DistM)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	x := NewIndex()
	// A straight east-west track along the equator.
	x.SetNodes([]Node{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	})
	proj := x.ClosestPoint(0.0001, 0.5)
	if proj.SegmentIndex != 0 {
		t.Fatalf("expected segment 0, got %d", proj.SegmentIndex)
	}
	if proj.DistM > 20 {
		t.Fatalf("expected a close snap, got dist=%v", proj.DistM)
	}
	if proj.Param < 0.49 || proj.Param > 0.51 {
		t.Fatalf("expected param near 0.5, got %v", proj.Param)
	}
}

func TestClampsToSegmentEndpoints(t *testing.T) {
	x := NewIndex()
	x.SetNodes([]Node{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	})
	proj := x.ClosestPoint(0, -1)
	if proj.Param != 0 {
		t.Fatalf("expected clamp to t=0, got %v", proj.Param)
	}
}

func TestDegenerateSegmentSkipped(t *testing.T) {
	x := NewIndex()
	x.SetNodes([]Node{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0}, // zero-length segment
		{Lat: 0, Lon: 1},
	})
	proj := x.ClosestPoint(0.0001, 0.9)
	if proj.SegmentIndex != 1 {
		t.Fatalf("expected the non-degenerate segment 1 to win, got %d", proj.SegmentIndex)
	}
}

func TestSetNodesTruncatesToMax(t *testing.T) {
	x := NewIndex()
	nodes := make([]Node, MaxNodes+500)
	for i := range nodes {
		nodes[i] = Node{Lat: float32(i), Lon: float32(i)}
	}
	x.SetNodes(nodes)
	if x.Count() != MaxNodes {
		t.Fatalf("expected truncation to %d, got %d", MaxNodes, x.Count())
	}
}

func TestLoadNodesCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.csv")
	content := "lat,lon\n0.0,0.0\n# a comment line\n\n0.0001,0.5\n0.0002,1.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}

	nodes, err := LoadNodesCSV(path)
	if err != nil {
		t.Fatalf("LoadNodesCSV: %v", err)
	}
	want := []Node{{Lat: 0.0, Lon: 0.0}, {Lat: 0.0001, Lon: 0.5}, {Lat: 0.0002, Lon: 1.0}}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d: %+v", len(want), len(nodes), nodes)
	}
	for i, n := range nodes {
		if n != want[i] {
			t.Fatalf("node %d: got %+v, want %+v", i, n, want[i])
		}
	}
}

func TestLoadNodesCSVTruncatesToMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp csv: %v", err)
	}
	for i := 0; i < MaxNodes+500; i++ {
		fmt.Fprintf(f, "%d,%d\n", i, i)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp csv: %v", err)
	}

	nodes, err := LoadNodesCSV(path)
	if err != nil {
		t.Fatalf("LoadNodesCSV: %v", err)
	}
	if len(nodes) != MaxNodes {
		t.Fatalf("expected truncation to %d, got %d", MaxNodes, len(nodes))
	}
}

func TestSegmentDirection(t *testing.T) {
	x := NewIndex()
	x.SetNodes([]Node{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1}, // due east
	})
	east, north, ok := x.SegmentDirection(0)
	if !ok {
		t.Fatalf("expected valid segment direction")
	}
	if east <= 0 {
		t.Fatalf("expected positive east component, got %v", east)
	}
	if north < -1e-3 || north > 1e-3 {
		t.Fatalf("expected ~zero north component, got %v", north)
	}
}
