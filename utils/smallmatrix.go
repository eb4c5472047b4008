package utils

import (
	"fmt"
	"math"
)

/*
	Fixed-shape matrix kernels for the element hot path.

	Every matrix in the per-element work is 3x3, 3x4 or 4x4, so these are
	value types with compile-time shapes - no allocation, no bounds checks
	beyond the constant loops, safe to keep on goroutine stacks.
*/

type Mat33 [3][3]float64
type Mat34 [3][4]float64
type Mat44 [4][4]float64

// Identity33 returns the 3x3 identity.
func Identity33() (I Mat33) {
	I[0][0], I[1][1], I[2][2] = 1, 1, 1
	return
}

// Mul computes a*b for two 3x3 matrices.
func (a Mat33) Mul(b Mat33) (c Mat33) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return
}

// Mul34 computes a*b for a 3x3 times a 3x4.
func (a Mat33) Mul34(b Mat34) (c Mat34) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return
}

// TransposeMul computes transpose(a)*b for two 3x3 matrices.
func (a Mat33) TransposeMul(b Mat33) (c Mat33) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[k][i] * b[k][j]
			}
		}
	}
	return
}

// TransposeMul34 computes transpose(a)*b for a 3x3 transposed against a 3x4.
func (a Mat33) TransposeMul34(b Mat34) (c Mat34) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[k][i] * b[k][j]
			}
		}
	}
	return
}

// MulTranspose computes a*transpose(b) for two 3x3 matrices.
func (a Mat33) MulTranspose(b Mat33) (c Mat33) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[i][k] * b[j][k]
			}
		}
	}
	return
}

// TransposeMul computes transpose(a)*b, a (4x3)x(3x4) product yielding 4x4.
func (a Mat34) TransposeMul(b Mat34) (c Mat44) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[k][i] * b[k][j]
			}
		}
	}
	return
}

// MulTranspose computes a*transpose(b), a (3x4)x(4x3) product yielding 3x3.
func (a Mat34) MulTranspose(b Mat34) (c Mat33) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				c[i][j] += a[i][k] * b[j][k]
			}
		}
	}
	return
}

// Scale returns s*a.
func (a Mat33) Scale(s float64) (c Mat33) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = a[i][j] * s
		}
	}
	return
}

// Scale returns s*a.
func (a Mat44) Scale(s float64) (c Mat44) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			c[i][j] = a[i][j] * s
		}
	}
	return
}

// Trace returns the trace of a.
func (a Mat33) Trace() float64 {
	return a[0][0] + a[1][1] + a[2][2]
}

// Det returns the determinant of a by cofactor expansion.
func (a Mat33) Det() float64 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[1][0]*(a[0][1]*a[2][2]-a[0][2]*a[2][1]) +
		a[2][0]*(a[0][1]*a[1][2]-a[0][2]*a[1][1])
}

const machineEps = 0x1p-52

// Inverse returns the inverse of a together with its determinant. The error
// is non-nil when the determinant is not finite or falls below machine
// tolerance relative to the cube of the mean absolute entry, the scale a
// well-conditioned determinant would have. Callers treat the error as a
// degenerate element.
func (a Mat33) Inverse() (inv Mat33, det float64, err error) {
	det = a.Det()
	var meanAbs float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			meanAbs += math.Abs(a[i][j])
		}
	}
	meanAbs /= 9
	if !isFinite(det) || math.Abs(det) <= machineEps*meanAbs*meanAbs*meanAbs {
		err = fmt.Errorf("singular 3x3 matrix, det = %g", det)
		return
	}
	inv[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) / det
	inv[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) / det
	inv[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) / det
	inv[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) / det
	inv[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) / det
	inv[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) / det
	inv[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) / det
	inv[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) / det
	inv[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) / det
	return
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return isFinite(x)
}
