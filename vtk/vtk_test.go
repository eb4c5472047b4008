package vtk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotherm/thermoelast"
)

func buildModel(t *testing.T) *thermoelast.Model {
	t.Helper()
	m := &thermoelast.Model{
		Mat:      thermoelast.NeoHookean,
		MatVals:  []float64{1, 10},
		Cond:     thermoelast.CondIsotropic,
		CondVals: []float64{1000, 0.5},
		Rho:      1,
		T0:       37,
		Dt:       1.e-3,
		TotalT:   0.05,
		EleType:  "T4",
		Nodes: []thermoelast.Node{
			{ID: 0, X: 0, Y: 0, Z: 0},
			{ID: 1, X: 1, Y: 0, Z: 0},
			{ID: 2, X: 0, Y: 1, Z: 0},
			{ID: 3, X: 0, Y: 0, Z: 1},
			{ID: 4, X: 1, Y: 1, Z: 1},
		},
	}
	for id, cn := range [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}} {
		nd := [4]thermoelast.Node{m.Nodes[cn[0]], m.Nodes[cn[1]], m.Nodes[cn[2]], m.Nodes[cn[3]]}
		tet, err := thermoelast.NewT4(id, nd, m.Rho,
			m.Mat, m.MatVals, m.Cond, m.CondVals, m.Expan, m.ExpanVals)
		require.NoError(t, err)
		m.Tets = append(m.Tets, tet)
	}
	return m
}

func TestExportRoundTrip(t *testing.T) {
	m := buildModel(t)
	m.Alpha = 10
	m.AddFixP(0, true, []int{0, 2, 3})
	m.AddDisp(thermoelast.AxisX, 0.05, []int{4})
	m.AddHFlux(1, []int{4})
	m.Finalize()
	sv := thermoelast.NewSolver(m, 1)
	require.NoError(t, sv.Run())

	dir := t.TempDir()
	require.NoError(t, Export(m, sv.State, dir, false))

	var (
		s = sv.State
	)
	{ // U.vtk: deformed points with displacement vectors
		g, err := ReadUnstructuredGrid(filepath.Join(dir, "U.vtk"))
		require.NoError(t, err)
		require.Len(t, g.Points, len(m.Nodes))
		require.Len(t, g.Cells, len(m.Tets))
		require.Len(t, g.Vectors, len(m.Nodes))
		assert.Equal(t, "U.vtk", g.DataName)
		for i, n := range m.Nodes {
			assert.InDelta(t, n.X+s.CurrU[i*3], g.Points[i][0], 1.e-12)
			assert.InDelta(t, n.Y+s.CurrU[i*3+1], g.Points[i][1], 1.e-12)
			assert.InDelta(t, n.Z+s.CurrU[i*3+2], g.Points[i][2], 1.e-12)
			assert.InDelta(t, s.CurrU[i*3], g.Vectors[i][0], 1.e-12)
			assert.InDelta(t, s.CurrU[i*3+1], g.Vectors[i][1], 1.e-12)
			assert.InDelta(t, s.CurrU[i*3+2], g.Vectors[i][2], 1.e-12)
		}
		for k, tet := range m.Tets {
			require.Len(t, g.Cells[k], 4)
			for c := 0; c < 4; c++ {
				assert.Equal(t, tet.N[c], g.Cells[k][c])
			}
			assert.Equal(t, tetCellType, g.CellTypes[k])
		}
	}
	{ // Undeformed.vtk: reference points, same vectors
		g, err := ReadUnstructuredGrid(filepath.Join(dir, "Undeformed.vtk"))
		require.NoError(t, err)
		for i, n := range m.Nodes {
			assert.Equal(t, n.X, g.Points[i][0])
			assert.Equal(t, n.Y, g.Points[i][1])
			assert.Equal(t, n.Z, g.Points[i][2])
		}
		require.Len(t, g.Vectors, len(m.Nodes))
	}
	{ // T.vtk: deformed points with temperature scalars
		g, err := ReadUnstructuredGrid(filepath.Join(dir, "T.vtk"))
		require.NoError(t, err)
		require.Len(t, g.Scalars, len(m.Nodes))
		assert.Equal(t, "T.vtk", g.DataName)
		assert.Nil(t, g.Vectors)
		for i := range m.Nodes {
			assert.InDelta(t, s.CurrT[i], g.Scalars[i], 1.e-12)
		}
	}
}

func TestExportBadDir(t *testing.T) {
	m := buildModel(t)
	m.Finalize()
	s := thermoelast.NewState(m)
	err := Export(m, s, filepath.Join(t.TempDir(), "missing", "deeper"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results not saved")
}
