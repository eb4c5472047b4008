package readfiles

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotherm/thermoelast"
)

const unitTetText = `
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 0.0 1.0 0.0
4 0.0 0.0 1.0
NH 1.0 10.0
T_ISO 1000.0 0.5
T_EXPAN_ISO 1e-4
Density 1050.0
T4
1 1 2 3 4
<Disp> x 0.1 2
<FixP> all 1 3 4
<FixP> y 2
<Gravity> z -9.8
<HFlux> 50.0 2
<Perfu> 0.5 3600.0 37.0 1
<FixT> 37.0 1
<BodyHFlux> 800.0 1
<Metabo> 400.0
</BC>
DampingCoef 1000.0
InitialTemp 37.0
TimeStep 0.0001
TotalTime 1.0
`

func TestParseModel(t *testing.T) {
	m, err := ParseModel(strings.NewReader(unitTetText))
	require.NoError(t, err)
	{ // Mesh and begin indices
		assert.Equal(t, 1, m.NodeBeginIndex)
		assert.Equal(t, 1, m.EleBeginIndex)
		require.Len(t, m.Nodes, 4)
		assert.Equal(t, 0, m.Nodes[0].ID)
		assert.Equal(t, thermoelast.Node{ID: 1, X: 1, Y: 0, Z: 0}, m.Nodes[1])
		require.Len(t, m.Tets, 1)
		assert.Equal(t, "T4", m.EleType)
		assert.Equal(t, [4]int{0, 1, 2, 3}, m.Tets[0].N)
		assert.InDelta(t, 1./6., m.Tets[0].Vol0, 1.e-15)
		assert.InDelta(t, 1050./6., m.Tets[0].Mass, 1.e-12)
	}
	{ // Materials
		assert.Equal(t, thermoelast.NeoHookean, m.Mat)
		assert.Equal(t, []float64{1, 10}, m.MatVals)
		assert.Equal(t, thermoelast.CondIsotropic, m.Cond)
		assert.Equal(t, []float64{1000, 0.5}, m.CondVals)
		assert.Equal(t, thermoelast.ExpanIsotropic, m.Expan)
		assert.Equal(t, []float64{1.e-4}, m.ExpanVals)
		assert.Equal(t, 1050., m.Rho)
	}
	{ // Boundary conditions, ids shifted to 0-based
		assert.Equal(t, 9, m.NumBCs)
		assert.Equal(t, []int{1}, m.DispIdx[thermoelast.AxisX])
		assert.Equal(t, []float64{0.1}, m.DispMag[thermoelast.AxisX])
		assert.Equal(t, []int{0, 2, 3}, m.FixPIdx[thermoelast.AxisX])
		assert.Equal(t, []int{0, 2, 3, 1}, m.FixPIdx[thermoelast.AxisY])
		assert.Equal(t, []int{0, 2, 3}, m.FixPIdx[thermoelast.AxisZ])
		require.NotNil(t, m.GravF[thermoelast.AxisZ])
		var weight float64
		for _, g := range m.GravF[thermoelast.AxisZ] {
			weight += g
		}
		assert.InDelta(t, -9.8*1050./6., weight, 1.e-10)
		assert.Equal(t, []int{1}, m.HFluxIdx)
		assert.Equal(t, []float64{50}, m.HFluxMag)
		// one element, so every node carries w_b*Vol0/4*c_b = 75
		require.Len(t, m.PerfuIdx, 4)
		for i := range m.PerfuIdx {
			assert.InDelta(t, 75, m.PerfuCoef[i], 1.e-12)
			assert.Equal(t, 37., m.PerfuRefT[i])
		}
		assert.Equal(t, []int{0}, m.FixTIdx)
		assert.Equal(t, []float64{37}, m.FixTMag)
		require.Len(t, m.BHFluxIdx, 4)
		for i := range m.BHFluxIdx {
			assert.InDelta(t, 800./6./4., m.BHFluxMag[i], 1.e-12)
		}
		var metabo float64
		for _, q := range m.MetaboMag {
			metabo += q
		}
		assert.InDelta(t, 400./6., metabo, 1.e-12)
	}
	{ // Global scalars and derived sizes
		assert.Equal(t, 1000., m.Alpha)
		assert.Equal(t, 37., m.T0)
		assert.Equal(t, 0.0001, m.Dt)
		assert.Equal(t, 1., m.TotalT)
		assert.Equal(t, 10000, m.NumSteps)
		assert.Equal(t, 12, m.NumMDOFs)
		assert.Equal(t, 4, m.NumTDOFs)
	}
}

func TestParseModelBeginIndices(t *testing.T) {
	// Arbitrary begin indices are honored: ids are only required to be
	// consecutive from the first one seen.
	text := `
100 0.0 0.0 0.0
101 1.0 0.0 0.0
102 0.0 1.0 0.0
103 0.0 0.0 1.0
NH 1.0 10.0
T_ISO 1000.0 0.5
T_EXPAN_NONE
Density 1.0
T4
7 100 101 102 103
<FixT> 40.0 103
</BC>
DampingCoef 0.0
InitialTemp 37.0
TimeStep 0.001
TotalTime 1.0
`
	m, err := ParseModel(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 100, m.NodeBeginIndex)
	assert.Equal(t, 7, m.EleBeginIndex)
	assert.Equal(t, [4]int{0, 1, 2, 3}, m.Tets[0].N)
	assert.Equal(t, []int{3}, m.FixTIdx)
	assert.Equal(t, thermoelast.ExpanNone, m.Expan)
	assert.Nil(t, m.ExpanVals)
}

func TestParseModelErrors(t *testing.T) {
	parse := func(text string) error {
		_, err := ParseModel(strings.NewReader(text))
		return err
	}
	{ // Unknown material token
		err := parse("1 0 0 0\nMR 1 1\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mechanical material")
	}
	{ // Element referencing a node that does not exist
		err := parse(`
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 0.0 1.0 0.0
4 0.0 0.0 1.0
NH 1.0 10.0
T_ISO 1000.0 0.5
T_EXPAN_NONE
Density 1.0
T4
1 1 2 3 9
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown node")
	}
	{ // Unknown boundary condition tag
		err := parse(`
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 0.0 1.0 0.0
4 0.0 0.0 1.0
NH 1.0 10.0
T_ISO 1000.0 0.5
T_EXPAN_NONE
Density 1.0
T4
1 1 2 3 4
<Pressure> 1.0 1
</BC>
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown boundary condition tag")
	}
	{ // Truncated file
		err := parse("1 0.0 0.0")
		require.Error(t, err)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	}
	{ // Degenerate element
		err := parse(`
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 0.0 1.0 0.0
4 1.0 1.0 0.0
NH 1.0 10.0
T_ISO 1000.0 0.5
T_EXPAN_NONE
Density 1.0
T4
1 1 2 3 4
`)
		require.Error(t, err)
		var degen *thermoelast.DegenerateElementError
		assert.True(t, errors.As(err, &degen))
	}
}

func TestReadModelMissingFile(t *testing.T) {
	_, err := ReadModel("no_such_model.txt", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open file")
}
