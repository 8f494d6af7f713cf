// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package linalg

// Mat15 is a row-major 15x15 matrix, used for the error-state
// covariance in the fixed block ordering
// [dp(0..2), dv(3..5), dtheta(6..8), dba(9..11), dbg(12..14)].
type Mat15 [15][15]float32

// Identity15 returns the 15x15 identity matrix.
func Identity15() Mat15 {
	var m Mat15
	for i := 0; i < 15; i++ {
		m[i][i] = 1
	}
	return m
}

// Mul returns a*b.
func (a Mat15) Mul(b Mat15) Mat15 {
	var r Mat15
	for i := 0; i < 15; i++ {
		for j := 0; j < 15; j++ {
			var s float32
			for k := 0; k < 15; k++ {
				s += a[i][k] * b[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

// Add returns a+b.
func (a Mat15) Add(b Mat15) Mat15 {
	var r Mat15
	for i := 0; i < 15; i++ {
		for j := 0; j < 15; j++ {
			r[i][j] = a[i][j] + b[i][j]
		}
	}
	return r
}

// Scale returns a*s.
func (a Mat15) Scale(s float32) Mat15 {
	var r Mat15
	for i := 0; i < 15; i++ {
		for j := 0; j < 15; j++ {
			r[i][j] = a[i][j] * s
		}
	}
	return r
}

// SetBlock3 writes a 3x3 block into a at block row/col index (0..4,
// each spanning 3 scalar rows/cols).
func (a *Mat15) SetBlock3(blockRow, blockCol int, b Mat3) {
	r0, c0 := blockRow*3, blockCol*3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[r0+i][c0+j] = b[i][j]
		}
	}
}

// Block3 reads a 3x3 block out of a at block row/col index (0..4).
func (a Mat15) Block3(blockRow, blockCol int) Mat3 {
	r0, c0 := blockRow*3, blockCol*3
	var b Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b[i][j] = a[r0+i][c0+j]
		}
	}
	return b
}

// Diagonal returns the 15 diagonal entries.
func (a Mat15) Diagonal() [15]float32 {
	var d [15]float32
	for i := 0; i < 15; i++ {
		d[i] = a[i][i]
	}
	return d
}

// Symmetric reports whether a is symmetric to within tol.
func (a Mat15) Symmetric(tol float32) bool {
	for i := 0; i < 15; i++ {
		for j := i + 1; j < 15; j++ {
			d := a[i][j] - a[j][i]
			if d < 0 {
				d = -d
			}
			if d > tol {
				return false
			}
		}
	}
	return true
}
