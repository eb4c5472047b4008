package thermoelast

import (
	"math"
	"sync"

	"github.com/notargets/gotherm/utils"
)

/*
	One coupled step is two fork-join phases.

	Phase A partitions the tetrahedra: each element computes its stress and
	deformed conduction matrix and scatters the four corner force and heat
	contributions into its own disjoint slice of the per-element buffers.
	Phase B partitions the nodes: each node gathers its incident corner
	contributions through the model's corner index and integrates. The
	wait between the phases is the only synchronization point; neither
	phase takes a lock, allocates, or blocks. Results are bit-identical
	for any worker count.
*/

// StepOne advances displacements and temperatures by one time step. It
// returns ErrDiverged when any integrated value is non-finite; the state is
// then left un-rotated at the failing step.
func (sv *Solver) StepOne() error {
	var (
		s  = sv.State
		NP = sv.ElemParts.ParallelDegree
		wg = sync.WaitGroup{}
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			kMin, kMax := sv.ElemParts.GetBucketRange(np)
			sv.elementPass(kMin, kMax)
			wg.Done()
		}(np)
	}
	wg.Wait()
	NP = sv.NodeParts.ParallelDegree
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			iMin, iMax := sv.NodeParts.GetBucketRange(np)
			sv.nodePass(iMin, iMax)
			wg.Done()
		}(np)
	}
	wg.Wait()
	if s.Diverged() {
		return ErrDiverged
	}
	s.PrevU, s.CurrU, s.NextU = s.CurrU, s.NextU, s.PrevU
	s.CurrT, s.NextT = s.NextT, s.CurrT
	return nil
}

// elementPass runs the per-element kernel over tetrahedra [kMin, kMax).
func (sv *Solver) elementPass(kMin, kMax int) {
	var (
		m = sv.Model
		s = sv.State
	)
	for k := kMin; k < kMax; k++ {
		var (
			tet = m.Tets[k]
			u   utils.Mat34
		)
		for c := 0; c < 4; c++ {
			base := tet.N[c] * 3
			u[0][c] = s.CurrU[base]
			u[1][c] = s.CurrU[base+1]
			u[2][c] = s.CurrU[base+2]
		}
		tet.X = u.MulTranspose(tet.DHDX)
		tet.X[0][0]++
		tet.X[1][1]++
		tet.X[2][2]++
		var (
			Xel     = tet.X
			invXexp utils.Mat33
			Jexp    float64
			err     error
		)
		if tet.Expan != ExpanNone {
			Tbar := (s.CurrT[tet.N[0]] + s.CurrT[tet.N[1]] + s.CurrT[tet.N[2]] + s.CurrT[tet.N[3]]) / 4
			tet.Xexp = tet.Expan.Gradient(tet.ExpanVals, Tbar-m.T0)
			if invXexp, Jexp, err = tet.Xexp.Inverse(); err != nil {
				s.diverged.Store(true)
				continue
			}
			Xel = tet.X.Mul(invXexp)
		}
		C := Xel.TransposeMul(Xel)
		invC, Jsq, err := C.Inverse()
		if err != nil {
			s.diverged.Store(true)
			continue
		}
		J := math.Sqrt(Jsq)
		evalStress(tet, C, invC, J)
		if tet.Expan != ExpanNone {
			// pull the stress back to the reference configuration
			tet.S = invXexp.Mul(tet.S).MulTranspose(invXexp).Scale(Jexp)
		}
		f := tet.X.Mul(tet.S).Scale(tet.Vol0).Mul34(tet.DHDX)
		for c := 0; c < 4; c++ {
			base := tet.ID*12 + c*3
			s.EleNodalF[base] = f[0][c]
			s.EleNodalF[base+1] = f[1][c]
			s.EleNodalF[base+2] = f[2][c]
		}
		invX, Jx, err := tet.X.Inverse()
		if err != nil {
			s.diverged.Store(true)
			continue
		}
		tet.DHDx = invX.TransposeMul34(tet.DHDX)
		tet.Vol = tet.Vol0 * Jx
		if tet.Cond == CondIsotropic {
			// D = k*I, so skip the full conductivity multiply
			tet.K = tet.DHDx.TransposeMul(tet.DHDx).Scale(tet.Vol * tet.D[0][0])
		} else {
			tet.K = tet.DHDx.TransposeMul(tet.D.Mul34(tet.DHDx)).Scale(tet.Vol)
		}
		for c := 0; c < 4; c++ {
			s.EleNodalQ[tet.ID*4+c] = tet.K[c][0]*s.CurrT[tet.N[0]] +
				tet.K[c][1]*s.CurrT[tet.N[1]] +
				tet.K[c][2]*s.CurrT[tet.N[2]] +
				tet.K[c][3]*s.CurrT[tet.N[3]]
		}
	}
}

// evalStress computes the 2nd Piola-Kirchhoff stress for the element from
// the right Cauchy-Green tensor and its inverse and determinant-root J.
func evalStress(tet *T4, C, invC utils.Mat33, J float64) {
	var (
		J23 = math.Pow(J, -2.0/3.0)
		I1  = C.Trace()
		v   = tet.MatVals
	)
	switch tet.Mat {
	case NeoHookean:
		var (
			c1 = J23 * v[0]              // J^(-2/3)*mu
			c2 = -c1*I1/3 + v[1]*J*(J-1) // -mu*J^(-2/3)*I1/3 + K*J*(J-1)
		)
		tet.S[0][0] = c2*invC[0][0] + c1
		tet.S[0][1] = c2 * invC[0][1]
		tet.S[0][2] = c2 * invC[0][2]
		tet.S[1][1] = c2*invC[1][1] + c1
		tet.S[1][2] = c2 * invC[1][2]
		tet.S[2][2] = c2*invC[2][2] + c1
		tet.S[1][0], tet.S[2][0], tet.S[2][1] = tet.S[0][1], tet.S[0][2], tet.S[1][2]
	case TransverselyIso:
		var (
			I4 = v[3]*C[0][0] + 2*v[4]*C[0][1] + 2*v[5]*C[0][2] +
				v[6]*C[1][1] + 2*v[7]*C[1][2] + v[8]*C[2][2]
			I4c = J23 * I4
			c1  = J23 * v[0]
			c2  = v[2] * (I4c - 1) // eta*(I4^ - 1)
			c3  = 2 * J23 * c2
			c4  = -(c1*I1+2*c2*I4c)/3 + v[1]*J*(J-1)
		)
		tet.S[0][0] = c4*invC[0][0] + c3*v[3] + c1
		tet.S[0][1] = c4*invC[0][1] + c3*v[4]
		tet.S[0][2] = c4*invC[0][2] + c3*v[5]
		tet.S[1][1] = c4*invC[1][1] + c3*v[6] + c1
		tet.S[1][2] = c4*invC[1][2] + c3*v[7]
		tet.S[2][2] = c4*invC[2][2] + c3*v[8] + c1
		tet.S[1][0], tet.S[2][0], tet.S[2][1] = tet.S[0][1], tet.S[0][2], tet.S[1][2]
	}
}

// nodePass gathers element contributions and integrates nodes [iMin, iMax).
func (sv *Solver) nodePass(iMin, iMax int) {
	var (
		m = sv.Model
		s = sv.State
	)
	for i := iMin; i < iMax; i++ {
		var (
			fInt [3]float64
			qInt float64
		)
		for _, cr := range m.NodeCorners(i) {
			base := cr.Elem*12 + cr.Corner*3
			fInt[0] += s.EleNodalF[base]
			fInt[1] += s.EleNodalF[base+1]
			fInt[2] += s.EleNodalF[base+2]
			qInt += s.EleNodalQ[cr.Elem*4+cr.Corner]
		}
		for j := 0; j < 3; j++ {
			dof := i*3 + j
			switch {
			case s.DispMagT[dof] != 0: // ramped displacement target
				s.NextU[dof] = s.DispMagT[dof]
			case s.FixPFlag[dof]:
				s.NextU[dof] = 0
			default: // explicit central difference with mass damping
				s.NextU[dof] = s.CD1[dof]*(s.ExternalF[dof]-fInt[j]) +
					s.CD2[dof]*s.CurrU[dof] +
					s.CD3[dof]*s.PrevU[dof]
				if !utils.IsFinite(s.NextU[dof]) {
					s.diverged.Store(true)
				}
			}
		}
		if s.FixTFlag[i] {
			s.NextT[i] = s.FixTMag[i]
		} else { // explicit forward Euler
			s.NextT[i] = s.CurrT[i] + s.ConstA[i]*(s.ExternalQ[i]-qInt)
			if !utils.IsFinite(s.NextT[i]) {
				s.diverged.Store(true)
			}
		}
	}
}
