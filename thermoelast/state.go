package thermoelast

import (
	"sync/atomic"
)

// State owns the per-DOF and per-element mutable data of one simulation run.
// It never mutates the Model it was created from. The per-element-per-corner
// internal force and heat buffers give every element its own disjoint write
// slice during the element pass; the node pass gathers them through the
// model's corner index.
type State struct {
	model *Model

	// mechanical field
	ExternalF     []float64 // constant external nodal forces
	EleNodalF     []float64 // per-element per-corner internal forces, NumTets*12
	DispMagT      []float64 // ramped displacement targets at the current step
	CD1, CD2, CD3 []float64 // central-difference constants per DOF
	PrevU         []float64
	CurrU         []float64
	NextU         []float64

	// thermal field
	ExternalQ  []float64 // external nodal heat at the current step
	ExternalQ0 []float64 // constant part of the external nodal heat
	EleNodalQ  []float64 // per-element per-corner heat flows, NumTets*4
	FixTMag    []float64
	ConstA     []float64 // dt/(m_T*c) per node
	CurrT      []float64
	NextT      []float64

	FixPFlag []bool
	FixTFlag []bool

	NodalMassM []float64 // lumped mass per mechanical DOF
	NodalMassT []float64 // lumped mass per node

	// ClampRamp clamps the displacement ramp factor (step+1)*dt/total_t to 1
	// on the final step when total_t is not an integer multiple of dt.
	ClampRamp bool

	diverged atomic.Bool
}

// NewState allocates the run state for a finalized model, precomputes the
// lumped masses and integration constants, and applies the constant boundary
// conditions.
func NewState(m *Model) (s *State) {
	s = &State{
		model:      m,
		ExternalF:  make([]float64, m.NumMDOFs),
		EleNodalF:  make([]float64, len(m.Tets)*12),
		DispMagT:   make([]float64, m.NumMDOFs),
		CD1:        make([]float64, m.NumMDOFs),
		CD2:        make([]float64, m.NumMDOFs),
		CD3:        make([]float64, m.NumMDOFs),
		PrevU:      make([]float64, m.NumMDOFs),
		CurrU:      make([]float64, m.NumMDOFs),
		NextU:      make([]float64, m.NumMDOFs),
		ExternalQ:  make([]float64, m.NumTDOFs),
		ExternalQ0: make([]float64, m.NumTDOFs),
		EleNodalQ:  make([]float64, len(m.Tets)*4),
		FixTMag:    make([]float64, m.NumTDOFs),
		ConstA:     make([]float64, m.NumTDOFs),
		CurrT:      make([]float64, m.NumTDOFs),
		NextT:      make([]float64, m.NumTDOFs),
		FixPFlag:   make([]bool, m.NumMDOFs),
		FixTFlag:   make([]bool, m.NumTDOFs),
		NodalMassM: make([]float64, m.NumMDOFs),
		NodalMassT: make([]float64, m.NumTDOFs),
	}
	for i := range s.CurrT {
		s.CurrT[i] = m.T0
		s.NextT[i] = m.T0
	}
	for _, tet := range m.Tets {
		for c := 0; c < 4; c++ {
			for n := 0; n < 3; n++ {
				s.NodalMassM[tet.N[c]*3+n] += tet.Mass / 4
			}
			s.NodalMassT[tet.N[c]] += tet.Mass / 4
		}
	}
	for i := 0; i < m.NumMDOFs; i++ {
		mm := s.NodalMassM[i]
		s.CD1[i] = 1 / (m.Alpha*mm/2/m.Dt + mm/m.Dt/m.Dt)
		s.CD2[i] = 2 * mm * s.CD1[i] / m.Dt / m.Dt
		s.CD3[i] = m.Alpha*mm*s.CD1[i]/2/m.Dt - s.CD2[i]/2
	}
	// specific heat capacity is the first thermal material parameter
	c := m.CondVals[0]
	for i := 0; i < m.NumTDOFs; i++ {
		s.ConstA[i] = m.Dt / (s.NodalMassT[i] * c)
	}
	s.InitBC()
	return
}

// InitBC applies the constant boundary-condition contributions: gravity and
// fixity flags on the mechanical side, base heat loads and temperature pins
// on the thermal side.
func (s *State) InitBC() {
	m := s.model
	for i := range s.ExternalF {
		s.ExternalF[i] = 0
	}
	for axis := 0; axis < 3; axis++ {
		for i, g := range m.GravF[axis] {
			s.ExternalF[i*3+axis] += g
		}
		for _, i := range m.FixPIdx[axis] {
			s.FixPFlag[i*3+axis] = true
		}
	}
	for i := range s.ExternalQ0 {
		s.ExternalQ0[i] = 0
	}
	for i, idx := range m.HFluxIdx {
		s.ExternalQ0[idx] += m.HFluxMag[i]
	}
	for i, idx := range m.BHFluxIdx {
		s.ExternalQ0[idx] += m.BHFluxMag[i]
	}
	for i, q := range m.MetaboMag {
		s.ExternalQ0[i] += q
	}
	for i, idx := range m.FixTIdx {
		s.FixTFlag[idx] = true
		s.FixTMag[idx] = m.FixTMag[i]
	}
	copy(s.ExternalQ, s.ExternalQ0)
}

// RunTimeBC evaluates the time-dependent boundary conditions for the given
// 0-based step index: the linear displacement ramp and the perfusion sink
// against the current temperature.
func (s *State) RunTimeBC(step int) {
	var (
		m      = s.model
		factor = float64(step+1) * m.Dt / m.TotalT
	)
	if s.ClampRamp && factor > 1 {
		factor = 1
	}
	for axis := 0; axis < 3; axis++ {
		for i, idx := range m.DispIdx[axis] {
			s.DispMagT[idx*3+axis] = m.DispMag[axis][i] * factor
		}
	}
	for i, idx := range m.PerfuIdx {
		s.ExternalQ[idx] = s.ExternalQ0[idx] - m.PerfuCoef[i]*(s.CurrT[idx]-m.PerfuRefT[i])
	}
}

// Diverged reports whether any integration produced a non-finite result.
// The flag is a one-way transition that may be set from any worker.
func (s *State) Diverged() bool {
	return s.diverged.Load()
}
