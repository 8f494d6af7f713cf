// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package linalg

import "math"

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float32

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mul returns a*b.
func (a Mat3) Mul(b Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float32
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

// MulVec returns a*v.
func (a Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		a[0][0]*v[0] + a[0][1]*v[1] + a[0][2]*v[2],
		a[1][0]*v[0] + a[1][1]*v[1] + a[1][2]*v[2],
		a[2][0]*v[0] + a[2][1]*v[1] + a[2][2]*v[2],
	}
}

// Add returns a+b.
func (a Mat3) Add(b Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] + b[i][j]
		}
	}
	return r
}

// Scale returns a*s.
func (a Mat3) Scale(s float32) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] * s
		}
	}
	return r
}

// Transpose returns the transpose of a.
func (a Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[j][i] = a[i][j]
		}
	}
	return r
}

// Det returns the determinant of a.
func (a Mat3) Det() float32 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// Inverse returns the inverse of a via the cofactor expansion. ok is
// false (and the returned matrix the identity) if |det(a)| < 1e-10.
func (a Mat3) Inverse() (inv Mat3, ok bool) {
	det := a.Det()
	if float32(math.Abs(float64(det))) < 1e-10 {
		return Identity3(), false
	}
	invDet := 1 / det
	var c Mat3
	c[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) * invDet
	c[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) * invDet
	c[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) * invDet
	c[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) * invDet
	c[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) * invDet
	c[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) * invDet
	c[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) * invDet
	c[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) * invDet
	c[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) * invDet
	return c, true
}

// Skew returns the skew-symmetric cross-product matrix [v]x such that
// [v]x * u == v x u for all u.
func Skew(v Vec3) Mat3 {
	return Mat3{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

// AxisAngle returns the rotation matrix corresponding to the rotation
// vector phi (axis * angle, radians) via the Rodrigues formula. The
// special case ||phi|| < 1e-12 returns the identity.
func AxisAngle(phi Vec3) Mat3 {
	theta := phi.Norm()
	if theta < 1e-12 {
		return Identity3()
	}
	axis := phi.Scale(1 / theta)
	k := Skew(axis)
	s := float32(math.Sin(float64(theta)))
	c := float32(math.Cos(float64(theta)))
	return Identity3().Add(k.Scale(s)).Add(k.Mul(k).Scale(1 - c))
}

// Euler holds ZYX (intrinsic) Euler angles in radians.
type Euler struct {
	Roll, Pitch, Yaw float32
}

// EulerToRotation builds R = Rz(yaw) * Ry(pitch) * Rx(roll).
func EulerToRotation(e Euler) Mat3 {
	sr, cr := math.Sincos(float64(e.Roll))
	sp, cp := math.Sincos(float64(e.Pitch))
	sy, cy := math.Sincos(float64(e.Yaw))

	rz := Mat3{
		{float32(cy), float32(-sy), 0},
		{float32(sy), float32(cy), 0},
		{0, 0, 1},
	}
	ry := Mat3{
		{float32(cp), 0, float32(sp)},
		{0, 1, 0},
		{float32(-sp), 0, float32(cp)},
	}
	rx := Mat3{
		{1, 0, 0},
		{0, float32(cr), float32(-sr)},
		{0, float32(sr), float32(cr)},
	}
	return rz.Mul(ry).Mul(rx)
}

// RotationToEuler extracts ZYX Euler angles from a proper rotation
// matrix. Near gimbal lock (cos(pitch) <= 1e-6) roll is fixed to zero
// and yaw absorbs the remaining degree of freedom.
func RotationToEuler(r Mat3) Euler {
	pitch := float32(math.Asin(float64(-r[2][0])))
	cosPitch := float32(math.Cos(float64(pitch)))

	var roll, yaw float32
	if cosPitch > 1e-6 {
		roll = float32(math.Atan2(float64(r[2][1]), float64(r[2][2])))
		yaw = float32(math.Atan2(float64(r[1][0]), float64(r[0][0])))
	} else {
		roll = 0
		yaw = float32(math.Atan2(float64(-r[0][1]), float64(r[1][1])))
	}
	return Euler{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// Orthonormalize re-orthonormalizes r via Gram-Schmidt on its columns:
// column 0 is normalized, column 1 is re-orthogonalized against column
// 0 and normalized, and column 2 is rebuilt as column0 x column1. It is
// idempotent on an already-orthonormal input.
func (a Mat3) Orthonormalize() Mat3 {
	c0 := Vec3{a[0][0], a[1][0], a[2][0]}.Normalize()
	c1raw := Vec3{a[0][1], a[1][1], a[2][1]}
	c1 := c1raw.Sub(c0.Scale(c0.Dot(c1raw))).Normalize()
	c2 := c0.Cross(c1)

	return Mat3{
		{c0[0], c1[0], c2[0]},
		{c0[1], c1[1], c2[1]},
		{c0[2], c1[2], c2[2]},
	}
}
