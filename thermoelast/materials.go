package thermoelast

import (
	"fmt"
	"math"

	"github.com/notargets/gotherm/utils"
)

/*
	Constitutive model descriptors.

	Parameter vectors are normalized once at load time so the element pass
	reads precomputed structure tensors instead of re-deriving them per step:
	fibre directions are unit-normalized and expanded into their dyadic
	products, and expansion coefficients are stored as offsets from the
	isotropic coefficient.
*/

// MaterialModel selects the hyperelastic stress evaluation.
type MaterialModel uint8

const (
	MaterialUnknown MaterialModel = iota
	NeoHookean                    // params (mu, K)
	TransverselyIso               // params (mu, K, eta, ax, ay, az)
)

func ParseMaterialModel(token string) (m MaterialModel, err error) {
	switch token {
	case "NH":
		m = NeoHookean
	case "TI":
		m = TransverselyIso
	default:
		err = fmt.Errorf("unknown mechanical material type %q", token)
	}
	return
}

func (m MaterialModel) String() string {
	switch m {
	case NeoHookean:
		return "NH"
	case TransverselyIso:
		return "TI"
	}
	return "Unknown"
}

// NumInputParams is the raw parameter count read from the model file.
func (m MaterialModel) NumInputParams() int {
	switch m {
	case NeoHookean:
		return 2
	case TransverselyIso:
		return 6
	}
	return 0
}

// Normalize converts raw file parameters into the stored form. NH passes
// (mu, K) through. TI maps (mu, K, eta, a) to (mu, K, eta, A00, A01, A02,
// A11, A12, A22) with A the dyadic product of the unit fibre direction a.
func (m MaterialModel) Normalize(in []float64) (out []float64, err error) {
	if len(in) != m.NumInputParams() {
		err = fmt.Errorf("material %v needs %d parameters, got %d", m, m.NumInputParams(), len(in))
		return
	}
	switch m {
	case NeoHookean:
		out = []float64{in[0], in[1]}
	case TransverselyIso:
		a, errU := unitVector(in[3], in[4], in[5])
		if errU != nil {
			err = fmt.Errorf("material %v fibre direction: %w", m, errU)
			return
		}
		out = []float64{in[0], in[1], in[2],
			a[0] * a[0], a[0] * a[1], a[0] * a[2],
			a[1] * a[1], a[1] * a[2], a[2] * a[2]}
	default:
		err = fmt.Errorf("material %v cannot be normalized", m)
	}
	return
}

// Conductivity selects the thermal conductivity tensor structure. The first
// raw parameter is always the specific heat capacity c.
type Conductivity uint8

const (
	CondUnknown Conductivity = iota
	CondIsotropic
	CondOrthotropic
	CondAnisotropic
)

func ParseConductivity(token string) (ct Conductivity, err error) {
	switch token {
	case "T_ISO":
		ct = CondIsotropic
	case "T_ORTHO":
		ct = CondOrthotropic
	case "T_ANISO":
		ct = CondAnisotropic
	default:
		err = fmt.Errorf("unknown thermal material type %q", token)
	}
	return
}

func (ct Conductivity) String() string {
	switch ct {
	case CondIsotropic:
		return "T_ISO"
	case CondOrthotropic:
		return "T_ORTHO"
	case CondAnisotropic:
		return "T_ANISO"
	}
	return "Unknown"
}

func (ct Conductivity) NumInputParams() int {
	switch ct {
	case CondIsotropic:
		return 2 // c, k
	case CondOrthotropic:
		return 4 // c, k11, k22, k33
	case CondAnisotropic:
		return 7 // c, k11, k12, k13, k22, k23, k33
	}
	return 0
}

// Tensor assembles the symmetric 3x3 conductivity tensor D from the stored
// parameters (vals[0] is the specific heat and is skipped).
func (ct Conductivity) Tensor(vals []float64) (D utils.Mat33) {
	switch ct {
	case CondIsotropic:
		D[0][0], D[1][1], D[2][2] = vals[1], vals[1], vals[1]
	case CondOrthotropic:
		D[0][0], D[1][1], D[2][2] = vals[1], vals[2], vals[3]
	case CondAnisotropic:
		D[0][0], D[0][1], D[0][2] = vals[1], vals[2], vals[3]
		D[1][0], D[1][1], D[1][2] = vals[2], vals[4], vals[5]
		D[2][0], D[2][1], D[2][2] = vals[3], vals[5], vals[6]
	}
	return
}

// Expansion selects the thermal expansion model used in the multiplicative
// split of the deformation gradient.
type Expansion uint8

const (
	ExpanNone Expansion = iota
	ExpanIsotropic
	ExpanTI
	ExpanOrthotropic
)

func ParseExpansion(token string) (e Expansion, err error) {
	switch token {
	case "T_EXPAN_NONE":
		e = ExpanNone
	case "T_EXPAN_ISO":
		e = ExpanIsotropic
	case "T_EXPAN_TI":
		e = ExpanTI
	case "T_EXPAN_ORTHO":
		e = ExpanOrthotropic
	default:
		err = fmt.Errorf("unknown thermal expansion type %q", token)
	}
	return
}

func (e Expansion) String() string {
	switch e {
	case ExpanNone:
		return "T_EXPAN_NONE"
	case ExpanIsotropic:
		return "T_EXPAN_ISO"
	case ExpanTI:
		return "T_EXPAN_TI"
	case ExpanOrthotropic:
		return "T_EXPAN_ORTHO"
	}
	return "Unknown"
}

func (e Expansion) NumInputParams() int {
	switch e {
	case ExpanIsotropic:
		return 1 // alpha_i
	case ExpanTI:
		return 5 // alpha_i, alpha_m, m
	case ExpanOrthotropic:
		return 9 // alpha_i, alpha_m, m, alpha_n, n
	}
	return 0
}

// Normalize converts raw expansion parameters to the stored form:
//
//	ISO:   (ai)                  -> (ai)
//	TI:    (ai, am, m)           -> (ai, am-ai, M00..M22)
//	ORTHO: (ai, am, m, an, n)    -> (ai, am-ai, M00..M22, an-ai, N00..N22)
//
// with M, N the dyadic products of the unit directions m and n.
func (e Expansion) Normalize(in []float64) (out []float64, err error) {
	if len(in) != e.NumInputParams() {
		err = fmt.Errorf("expansion %v needs %d parameters, got %d", e, e.NumInputParams(), len(in))
		return
	}
	dyad := func(ai, aDir float64, d [3]float64) []float64 {
		return []float64{aDir - ai,
			d[0] * d[0], d[0] * d[1], d[0] * d[2],
			d[1] * d[1], d[1] * d[2], d[2] * d[2]}
	}
	switch e {
	case ExpanNone:
		out = nil
	case ExpanIsotropic:
		out = []float64{in[0]}
	case ExpanTI:
		m, errU := unitVector(in[2], in[3], in[4])
		if errU != nil {
			err = fmt.Errorf("expansion %v direction m: %w", e, errU)
			return
		}
		out = append([]float64{in[0]}, dyad(in[0], in[1], m)...)
	case ExpanOrthotropic:
		m, errM := unitVector(in[2], in[3], in[4])
		if errM != nil {
			err = fmt.Errorf("expansion %v direction m: %w", e, errM)
			return
		}
		n, errN := unitVector(in[6], in[7], in[8])
		if errN != nil {
			err = fmt.Errorf("expansion %v direction n: %w", e, errN)
			return
		}
		out = append([]float64{in[0]}, dyad(in[0], in[1], m)...)
		out = append(out, dyad(in[0], in[5], n)...)
	}
	return
}

// Gradient builds the thermal expansion deformation gradient X_exp for a
// temperature offset dT from the stress-free temperature.
func (e Expansion) Gradient(vals []float64, dT float64) (X utils.Mat33) {
	var (
		lamI = 1 + vals[0]*dT
	)
	switch e {
	case ExpanIsotropic:
		X[0][0], X[1][1], X[2][2] = lamI, lamI, lamI
	case ExpanTI:
		lamM := vals[1] * dT
		X[0][0] = lamM*vals[2] + lamI
		X[0][1] = lamM * vals[3]
		X[0][2] = lamM * vals[4]
		X[1][1] = lamM*vals[5] + lamI
		X[1][2] = lamM * vals[6]
		X[2][2] = lamM*vals[7] + lamI
		X[1][0], X[2][0], X[2][1] = X[0][1], X[0][2], X[1][2]
	case ExpanOrthotropic:
		lamM := vals[1] * dT
		lamN := vals[8] * dT
		X[0][0] = lamM*vals[2] + lamN*vals[9] + lamI
		X[0][1] = lamM*vals[3] + lamN*vals[10]
		X[0][2] = lamM*vals[4] + lamN*vals[11]
		X[1][1] = lamM*vals[5] + lamN*vals[12] + lamI
		X[1][2] = lamM*vals[6] + lamN*vals[13]
		X[2][2] = lamM*vals[7] + lamN*vals[14] + lamI
		X[1][0], X[2][0], X[2][1] = X[0][1], X[0][2], X[1][2]
	}
	return
}

func unitVector(x, y, z float64) (u [3]float64, err error) {
	mag := math.Sqrt(x*x + y*y + z*z)
	if mag == 0 || !utils.IsFinite(mag) {
		err = fmt.Errorf("direction (%g, %g, %g) has no length", x, y, z)
		return
	}
	u = [3]float64{x / mag, y / mag, z / mag}
	return
}
