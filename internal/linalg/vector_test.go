// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package linalg

import "testing"

func TestNormalizeZeroVector(t *testing.T) {
	v := Vec3{0, 0, 0}.Normalize()
	if v != (Vec3{0, 0, 0}) {
		t.Fatalf("normalize(0) = %v, want zero vector", v)
	}
}

func TestCrossAndDot(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Fatalf("x cross y = %v, want z", z)
	}
	if x.Dot(y) != 0 {
		t.Fatalf("x dot y = %v, want 0", x.Dot(y))
	}
}
