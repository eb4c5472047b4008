package thermoelast

import (
	"fmt"
	"math"
)

// Node is an immutable mesh vertex in the reference configuration. IDs are
// 0-based internally regardless of the numbering in the input file.
type Node struct {
	ID      int
	X, Y, Z float64
}

// CornerRef identifies one corner of one element. The node-to-corner index
// built by Finalize lets the node pass gather element contributions without
// any write contention in the element pass.
type CornerRef struct {
	Elem, Corner int
}

// Axis constants for displacement and fixity boundary conditions.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// Model holds the mesh, the constitutive description, the boundary-condition
// tables and the global simulation scalars. It is read-only once Finalize has
// run; all mutable per-run data lives in State.
type Model struct {
	FileName string
	Nodes    []Node
	Tets     []*T4

	Mat       MaterialModel
	MatVals   []float64
	Cond      Conductivity
	CondVals  []float64
	Expan     Expansion
	ExpanVals []float64
	EleType   string

	Rho    float64 // density
	Alpha  float64 // mass-proportional damping coefficient
	T0     float64 // initial and stress-free temperature
	Dt     float64 // time step
	TotalT float64 // simulated time horizon

	NodeBeginIndex int
	EleBeginIndex  int
	NumBCs         int

	// Boundary conditions, folded to nodal form at load time. Displacement
	// magnitudes are the final ramp targets; gravity, body heat flux,
	// metabolic heat and perfusion coefficients are already distributed to
	// the corner nodes of their elements.
	DispIdx   [3][]int
	DispMag   [3][]float64
	FixPIdx   [3][]int
	GravF     [3][]float64 // per-node force, nil when no gravity on the axis
	HFluxIdx  []int
	HFluxMag  []float64
	PerfuIdx  []int
	PerfuCoef []float64 // w_b * Vol0/4 * c_b summed over incident elements
	PerfuRefT []float64
	FixTIdx   []int
	FixTMag   []float64
	BHFluxIdx []int
	BHFluxMag []float64
	MetaboMag []float64 // per-node, nil when absent

	NumSteps int
	NumMDOFs int
	NumTDOFs int

	// Corner incidence in CSR layout: the pairs for node i are
	// Corners[CornerOffset[i]:CornerOffset[i+1]].
	Corners      []CornerRef
	CornerOffset []int
}

// AddGravity folds a gravitational body force along the given axis into the
// per-node constant force table.
func (m *Model) AddGravity(axis int, g float64) {
	if m.GravF[axis] == nil {
		m.GravF[axis] = make([]float64, len(m.Nodes))
	}
	for _, tet := range m.Tets {
		for c := 0; c < 4; c++ {
			m.GravF[axis][tet.N[c]] += tet.Mass * g / 4
		}
	}
	m.NumBCs++
}

// AddHFlux adds a constant heat load q to each listed node.
func (m *Model) AddHFlux(q float64, nodeIDs []int) {
	for _, i := range nodeIDs {
		m.HFluxIdx = append(m.HFluxIdx, i)
		m.HFluxMag = append(m.HFluxMag, q)
	}
	m.NumBCs++
}

// AddBodyHFlux folds a volumetric heat source over the listed elements into
// nodal heat loads of q*Vol0/4 per corner.
func (m *Model) AddBodyHFlux(q float64, eleIDs []int) {
	nodal := make([]float64, len(m.Nodes))
	for _, e := range eleIDs {
		tet := m.Tets[e]
		for c := 0; c < 4; c++ {
			nodal[tet.N[c]] += q * tet.Vol0 / 4
		}
	}
	for i, v := range nodal {
		if v != 0 {
			m.BHFluxIdx = append(m.BHFluxIdx, i)
			m.BHFluxMag = append(m.BHFluxMag, v)
		}
	}
	m.NumBCs++
}

// AddMetabolic folds a metabolic heat source over every element.
func (m *Model) AddMetabolic(q float64) {
	if m.MetaboMag == nil {
		m.MetaboMag = make([]float64, len(m.Nodes))
	}
	for _, tet := range m.Tets {
		for c := 0; c < 4; c++ {
			m.MetaboMag[tet.N[c]] += q * tet.Vol0 / 4
		}
	}
	m.NumBCs++
}

// AddPerfusion folds a Pennes-style perfusion sink over the listed elements.
// Each incident node accumulates the coefficient w_b*Vol0/4*c_b; the per-step
// BC evaluation subtracts coef*(T_node - refT) from the node's base heat.
func (m *Model) AddPerfusion(wb, cb, refT float64, eleIDs []int) {
	nodal := make([]float64, len(m.Nodes))
	for _, e := range eleIDs {
		tet := m.Tets[e]
		for c := 0; c < 4; c++ {
			nodal[tet.N[c]] += wb * tet.Vol0 / 4 * cb
		}
	}
	for i, v := range nodal {
		if v != 0 {
			m.PerfuIdx = append(m.PerfuIdx, i)
			m.PerfuCoef = append(m.PerfuCoef, v)
			m.PerfuRefT = append(m.PerfuRefT, refT)
		}
	}
	m.NumBCs++
}

// AddDisp registers a ramped displacement target along the given axis.
func (m *Model) AddDisp(axis int, u float64, nodeIDs []int) {
	for _, i := range nodeIDs {
		m.DispIdx[axis] = append(m.DispIdx[axis], i)
		m.DispMag[axis] = append(m.DispMag[axis], u)
	}
	m.NumBCs++
}

// AddFixP fixes the mechanical DOFs of the listed nodes along axis, or along
// all three axes when all is set.
func (m *Model) AddFixP(axis int, all bool, nodeIDs []int) {
	for _, i := range nodeIDs {
		if all {
			m.FixPIdx[AxisX] = append(m.FixPIdx[AxisX], i)
			m.FixPIdx[AxisY] = append(m.FixPIdx[AxisY], i)
			m.FixPIdx[AxisZ] = append(m.FixPIdx[AxisZ], i)
		} else {
			m.FixPIdx[axis] = append(m.FixPIdx[axis], i)
		}
	}
	m.NumBCs++
}

// AddFixT pins the temperature of the listed nodes.
func (m *Model) AddFixT(T float64, nodeIDs []int) {
	for _, i := range nodeIDs {
		m.FixTIdx = append(m.FixTIdx, i)
		m.FixTMag = append(m.FixTMag, T)
	}
	m.NumBCs++
}

// Finalize computes the derived sizes and builds the node-to-corner index.
// It must run after all nodes, elements and BCs are loaded and before a
// State is created.
func (m *Model) Finalize() {
	m.NumSteps = int(math.Ceil(m.TotalT / m.Dt))
	m.NumMDOFs = 3 * len(m.Nodes)
	m.NumTDOFs = len(m.Nodes)
	m.buildCornerIndex()
}

func (m *Model) buildCornerIndex() {
	var (
		nNodes = len(m.Nodes)
		counts = make([]int, nNodes)
	)
	for _, tet := range m.Tets {
		for c := 0; c < 4; c++ {
			counts[tet.N[c]]++
		}
	}
	m.CornerOffset = make([]int, nNodes+1)
	for i := 0; i < nNodes; i++ {
		m.CornerOffset[i+1] = m.CornerOffset[i] + counts[i]
	}
	m.Corners = make([]CornerRef, m.CornerOffset[nNodes])
	fill := make([]int, nNodes)
	for _, tet := range m.Tets {
		for c := 0; c < 4; c++ {
			n := tet.N[c]
			m.Corners[m.CornerOffset[n]+fill[n]] = CornerRef{Elem: tet.ID, Corner: c}
			fill[n]++
		}
	}
}

// NodeCorners returns the (element, corner) pairs incident on node i.
func (m *Model) NodeCorners(i int) []CornerRef {
	return m.Corners[m.CornerOffset[i]:m.CornerOffset[i+1]]
}

// PrintInfo writes the model summary to stdout.
func (m *Model) PrintInfo() {
	fmt.Printf("Model:\t\t%s\n", m.FileName)
	fmt.Printf("Nodes:\t\t%d (%d DOFs)\n", len(m.Nodes), m.NumMDOFs+m.NumTDOFs)
	fmt.Printf("Elements:\t%d (%s)\n", len(m.Tets), m.EleType)
	fmt.Printf("EleMaterial:\t%v: %v\n", m.Mat, m.MatVals)
	fmt.Printf("\t\t%v: %v\n", m.Cond, m.CondVals)
	fmt.Printf("\t\t%v: %v\n", m.Expan, m.ExpanVals)
	fmt.Printf("\t\tDensity: %g\n", m.Rho)
	fmt.Printf("BC:\t\t%d\n", m.NumBCs)
	fmt.Printf("DampingCoef.:\t%g\n", m.Alpha)
	fmt.Printf("InitialTemp.:\t%g\n", m.T0)
	fmt.Printf("TimeStep:\t%g\n", m.Dt)
	fmt.Printf("TotalTime:\t%g\n", m.TotalT)
	fmt.Printf("NumSteps:\t%d\n", m.NumSteps)
	fmt.Printf("Node index starts at %d\n", m.NodeBeginIndex)
	fmt.Printf("Elem index starts at %d\n", m.EleBeginIndex)
}
