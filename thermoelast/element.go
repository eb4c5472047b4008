package thermoelast

import (
	"fmt"

	"github.com/notargets/gotherm/utils"
)

// DHDr holds the shape-function gradients of the linear reference
// tetrahedron in natural coordinates. It is the same for every element.
var DHDr = utils.Mat34{
	{-1, 1, 0, 0},
	{-1, 0, 1, 0},
	{-1, 0, 0, 1},
}

// DegenerateElementError reports a non-positive or numerically singular
// reference Jacobian, which makes the element unusable.
type DegenerateElementError struct {
	Elem int
	Det  float64
}

func (e *DegenerateElementError) Error() string {
	return fmt.Sprintf("element %d is degenerate, reference Jacobian determinant = %g", e.Elem, e.Det)
}

// T4 is a linear four-node tetrahedral element. The reference-configuration
// fields are computed once at construction; the remaining fields are per-step
// scratch, written only by the owning element during the element pass and
// read during the node pass.
type T4 struct {
	ID        int
	N         [4]int // global node indices; ordering sets the orientation
	Mat       MaterialModel
	MatVals   []float64
	Cond      Conductivity
	CondVals  []float64
	Expan     Expansion
	ExpanVals []float64

	Vol0 float64     // reference volume
	Mass float64     // rho * Vol0
	DHDX utils.Mat34 // shape-function gradients in material coordinates
	D    utils.Mat33 // conductivity tensor
	K0   utils.Mat44 // reference conduction matrix

	X    utils.Mat33 // deformation gradient
	Xexp utils.Mat33 // thermal expansion deformation gradient
	S    utils.Mat33 // 2nd Piola-Kirchhoff stress
	DHDx utils.Mat34 // shape-function gradients in the deformed configuration
	K    utils.Mat44 // deformed conduction matrix
	Vol  float64     // deformed volume
}

// NewT4 builds the reference-configuration data for a tetrahedron spanning
// the four nodes. The parameter slices must already be in normalized form.
func NewT4(id int, nd [4]Node, rho float64,
	mat MaterialModel, matVals []float64,
	cond Conductivity, condVals []float64,
	expan Expansion, expanVals []float64) (tet *T4, err error) {
	var (
		nCoords utils.Mat34
	)
	for c, n := range nd {
		nCoords[0][c], nCoords[1][c], nCoords[2][c] = n.X, n.Y, n.Z
	}
	J0 := DHDr.MulTranspose(nCoords)
	invJ0, detJ0, errInv := J0.Inverse()
	if errInv != nil || detJ0 <= 0 {
		err = &DegenerateElementError{Elem: id, Det: detJ0}
		return
	}
	tet = &T4{
		ID:        id,
		N:         [4]int{nd[0].ID, nd[1].ID, nd[2].ID, nd[3].ID},
		Mat:       mat,
		MatVals:   matVals,
		Cond:      cond,
		CondVals:  condVals,
		Expan:     expan,
		ExpanVals: expanVals,
		Vol0:      detJ0 / 6,
		Mass:      rho * detJ0 / 6,
		DHDX:      invJ0.Mul34(DHDr),
		D:         cond.Tensor(condVals),
	}
	tet.Vol = tet.Vol0
	tet.K0 = tet.DHDX.TransposeMul(tet.D.Mul34(tet.DHDX)).Scale(tet.Vol0)
	return
}
