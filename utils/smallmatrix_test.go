package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"
)

func TestSmallMatrixKernels(t *testing.T) {
	var (
		A = Mat33{{2, -1, 0.5}, {3, 4, -2}, {-0.25, 1.5, 5}}
		B = Mat33{{1, 0.5, -3}, {2, -1, 0}, {0.75, 4, 1.25}}
		P = Mat34{{1, -2, 0.5, 3}, {0, 4, -1, 2}, {2.5, 1, 0, -0.5}}
		Q = Mat34{{-1, 0.5, 2, 0}, {3, 1, -2, 4}, {0.25, -3, 1, 1.5}}
	)
	dense33 := func(m Mat33) *mat.Dense {
		d := mat.NewDense(3, 3, nil)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				d.Set(i, j, m[i][j])
			}
		}
		return d
	}
	dense34 := func(m Mat34) *mat.Dense {
		d := mat.NewDense(3, 4, nil)
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				d.Set(i, j, m[i][j])
			}
		}
		return d
	}
	check := func(t *testing.T, want *mat.Dense, got interface{}) {
		t.Helper()
		switch g := got.(type) {
		case Mat33:
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					assert.InDelta(t, want.At(i, j), g[i][j], 1.e-12)
				}
			}
		case Mat34:
			for i := 0; i < 3; i++ {
				for j := 0; j < 4; j++ {
					assert.InDelta(t, want.At(i, j), g[i][j], 1.e-12)
				}
			}
		case Mat44:
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					assert.InDelta(t, want.At(i, j), g[i][j], 1.e-12)
				}
			}
		}
	}
	mul := func(a, b mat.Matrix) *mat.Dense {
		var d mat.Dense
		d.Mul(a, b)
		return &d
	}
	{ // Products against gonum oracles
		check(t, mul(dense33(A), dense33(B)), A.Mul(B))
		check(t, mul(dense33(A), dense34(P)), A.Mul34(P))
		check(t, mul(dense33(A).T(), dense33(B)), A.TransposeMul(B))
		check(t, mul(dense33(A).T(), dense34(P)), A.TransposeMul34(P))
		check(t, mul(dense33(A), dense33(B).T()), A.MulTranspose(B))
		check(t, mul(dense34(P).T(), dense34(Q)), P.TransposeMul(Q))
		check(t, mul(dense34(P), dense34(Q).T()), P.MulTranspose(Q))
	}
	{ // Scaling and trace
		got := A.Scale(2.5)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.Equal(t, 2.5*A[i][j], got[i][j])
			}
		}
		assert.Equal(t, A[0][0]+A[1][1]+A[2][2], A.Trace())
		var K Mat44
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				K[i][j] = float64(i*4 + j)
			}
		}
		got44 := K.Scale(-0.5)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				assert.Equal(t, -0.5*K[i][j], got44[i][j])
			}
		}
	}
	{ // Determinant and inverse against gonum
		assert.InDelta(t, mat.Det(dense33(A)), A.Det(), 1.e-12)
		inv, det, err := A.Inverse()
		require.NoError(t, err)
		assert.InDelta(t, mat.Det(dense33(A)), det, 1.e-12)
		// A * inv(A) = I
		I := A.Mul(inv)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.
				if i == j {
					want = 1.
				}
				assert.InDelta(t, want, I[i][j], 1.e-12)
			}
		}
	}
	{ // Identity
		I := Identity33()
		assert.Equal(t, A, I.Mul(A))
		assert.Equal(t, A, A.Mul(I))
	}
}

func TestSmallMatrixSingular(t *testing.T) {
	{ // Rank-deficient matrix is rejected
		singular := Mat33{{1, 2, 3}, {2, 4, 6}, {1, 1, 1}}
		_, _, err := singular.Inverse()
		assert.Error(t, err)
	}
	{ // Zero matrix is rejected
		var zero Mat33
		_, _, err := zero.Inverse()
		assert.Error(t, err)
	}
	{ // A small but well-conditioned matrix still inverts
		tiny := Identity33().Scale(1.e-4)
		inv, det, err := tiny.Inverse()
		require.NoError(t, err)
		assert.InDelta(t, 1.e-12, det, 1.e-24)
		assert.InDelta(t, 1.e4, inv[0][0], 1.e-8)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.True(t, IsFinite(-1.5e300))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(1)-math.Inf(1))) // inf - inf
}
