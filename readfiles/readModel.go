package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/notargets/gotherm/thermoelast"
)

/*
	Model file reader.

	The format is a whitespace-delimited token stream read strictly in
	order: nodes, mechanical material, thermal material, thermal expansion,
	density, elements, boundary conditions, then the four global scalars.
	Sections of numeric records end at the first non-numeric token, so no
	counts appear anywhere in the file. The first node id and first element
	id define the begin indices; all ids are shifted to start at 0
	internally.
*/

// ReadModel parses the model file and returns a finalized model.
func ReadModel(fileName string, verbose bool) (m *thermoelast.Model, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(fileName); err != nil {
		err = fmt.Errorf("cannot open file %s: %w", fileName, err)
		return
	}
	defer file.Close()
	if verbose {
		fmt.Printf("Reading model file: %s\n", fileName)
	}
	if m, err = ParseModel(file); err != nil {
		err = fmt.Errorf("reading %s: %w", fileName, err)
		return
	}
	m.FileName = fileName
	return
}

// ParseModel reads the model text format from r.
func ParseModel(r io.Reader) (m *thermoelast.Model, err error) {
	var (
		ts = newTokenScanner(r)
	)
	m = &thermoelast.Model{}
	if err = readNodes(ts, m); err != nil {
		return
	}
	if err = readMaterials(ts, m); err != nil {
		return
	}
	if err = readElements(ts, m); err != nil {
		return
	}
	if err = readBCs(ts, m); err != nil {
		return
	}
	if m.Alpha, err = readLabeled(ts); err != nil {
		return
	}
	if m.T0, err = readLabeled(ts); err != nil {
		return
	}
	if m.Dt, err = readLabeled(ts); err != nil {
		return
	}
	if m.TotalT, err = readLabeled(ts); err != nil {
		return
	}
	m.Finalize()
	return
}

func readNodes(ts *tokenScanner, m *thermoelast.Model) (err error) {
	first := true
	for first || ts.peekIsInt() {
		var (
			id      int
			x, y, z float64
		)
		if id, err = ts.nextInt(); err != nil {
			return fmt.Errorf("node block: %w", err)
		}
		if x, err = ts.nextFloat(); err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		if y, err = ts.nextFloat(); err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		if z, err = ts.nextFloat(); err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		if first {
			m.NodeBeginIndex = id
			first = false
		}
		m.Nodes = append(m.Nodes, thermoelast.Node{ID: id - m.NodeBeginIndex, X: x, Y: y, Z: z})
	}
	return
}

func readMaterials(ts *tokenScanner, m *thermoelast.Model) (err error) {
	var (
		tok string
		raw []float64
	)
	if tok, err = ts.next(); err != nil {
		return
	}
	if m.Mat, err = thermoelast.ParseMaterialModel(tok); err != nil {
		return
	}
	if raw, err = ts.nextFloats(m.Mat.NumInputParams()); err != nil {
		return fmt.Errorf("material %v: %w", m.Mat, err)
	}
	if m.MatVals, err = m.Mat.Normalize(raw); err != nil {
		return
	}
	if tok, err = ts.next(); err != nil {
		return
	}
	if m.Cond, err = thermoelast.ParseConductivity(tok); err != nil {
		return
	}
	if m.CondVals, err = ts.nextFloats(m.Cond.NumInputParams()); err != nil {
		return fmt.Errorf("thermal material %v: %w", m.Cond, err)
	}
	if tok, err = ts.next(); err != nil {
		return
	}
	if m.Expan, err = thermoelast.ParseExpansion(tok); err != nil {
		return
	}
	if raw, err = ts.nextFloats(m.Expan.NumInputParams()); err != nil {
		return fmt.Errorf("expansion %v: %w", m.Expan, err)
	}
	if m.ExpanVals, err = m.Expan.Normalize(raw); err != nil {
		return
	}
	if m.Rho, err = readLabeled(ts); err != nil {
		return fmt.Errorf("density: %w", err)
	}
	return
}

func readElements(ts *tokenScanner, m *thermoelast.Model) (err error) {
	if m.EleType, err = ts.next(); err != nil {
		return
	}
	first := true
	for first || ts.peekIsInt() {
		var (
			id int
			ni [4]int
			nd [4]thermoelast.Node
		)
		if id, err = ts.nextInt(); err != nil {
			return fmt.Errorf("element block: %w", err)
		}
		for c := 0; c < 4; c++ {
			if ni[c], err = ts.nextInt(); err != nil {
				return fmt.Errorf("element %d: %w", id, err)
			}
			idx := ni[c] - m.NodeBeginIndex
			if idx < 0 || idx >= len(m.Nodes) {
				return fmt.Errorf("element %d references unknown node %d", id, ni[c])
			}
			nd[c] = m.Nodes[idx]
		}
		if first {
			m.EleBeginIndex = id
			first = false
		}
		var tet *thermoelast.T4
		if tet, err = thermoelast.NewT4(id-m.EleBeginIndex, nd, m.Rho,
			m.Mat, m.MatVals, m.Cond, m.CondVals, m.Expan, m.ExpanVals); err != nil {
			return
		}
		m.Tets = append(m.Tets, tet)
	}
	return
}

func readBCs(ts *tokenScanner, m *thermoelast.Model) (err error) {
	for {
		var (
			tok string
		)
		if tok, err = ts.next(); err != nil {
			return fmt.Errorf("boundary conditions: %w", err)
		}
		switch tok {
		case "</BC>":
			return
		case "<Disp>":
			var (
				axis int
				u    float64
				ids  []int
			)
			if axis, err = readAxis(ts); err != nil {
				return fmt.Errorf("<Disp>: %w", err)
			}
			if u, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Disp>: %w", err)
			}
			if ids, err = readNodeIDs(ts, m); err != nil {
				return fmt.Errorf("<Disp>: %w", err)
			}
			m.AddDisp(axis, u, ids)
		case "<FixP>":
			var (
				axisTok string
				axis    int
				ids     []int
			)
			if axisTok, err = ts.next(); err != nil {
				return fmt.Errorf("<FixP>: %w", err)
			}
			all := axisTok == "all"
			if !all {
				if axis, err = parseAxis(axisTok); err != nil {
					return fmt.Errorf("<FixP>: %w", err)
				}
			}
			if ids, err = readNodeIDs(ts, m); err != nil {
				return fmt.Errorf("<FixP>: %w", err)
			}
			m.AddFixP(axis, all, ids)
		case "<Gravity>":
			var (
				axis int
				g    float64
			)
			if axis, err = readAxis(ts); err != nil {
				return fmt.Errorf("<Gravity>: %w", err)
			}
			if g, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Gravity>: %w", err)
			}
			m.AddGravity(axis, g)
		case "<HFlux>":
			var (
				q   float64
				ids []int
			)
			if q, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<HFlux>: %w", err)
			}
			if ids, err = readNodeIDs(ts, m); err != nil {
				return fmt.Errorf("<HFlux>: %w", err)
			}
			m.AddHFlux(q, ids)
		case "<Perfu>":
			var (
				wb, cb, refT float64
				ids          []int
			)
			if wb, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Perfu>: %w", err)
			}
			if cb, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Perfu>: %w", err)
			}
			if refT, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Perfu>: %w", err)
			}
			if ids, err = readEleIDs(ts, m); err != nil {
				return fmt.Errorf("<Perfu>: %w", err)
			}
			m.AddPerfusion(wb, cb, refT, ids)
		case "<FixT>":
			var (
				T   float64
				ids []int
			)
			if T, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<FixT>: %w", err)
			}
			if ids, err = readNodeIDs(ts, m); err != nil {
				return fmt.Errorf("<FixT>: %w", err)
			}
			m.AddFixT(T, ids)
		case "<BodyHFlux>":
			var (
				q   float64
				ids []int
			)
			if q, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<BodyHFlux>: %w", err)
			}
			if ids, err = readEleIDs(ts, m); err != nil {
				return fmt.Errorf("<BodyHFlux>: %w", err)
			}
			m.AddBodyHFlux(q, ids)
		case "<Metabo>":
			var (
				q float64
			)
			if q, err = ts.nextFloat(); err != nil {
				return fmt.Errorf("<Metabo>: %w", err)
			}
			m.AddMetabolic(q)
		default:
			return fmt.Errorf("unknown boundary condition tag %q", tok)
		}
	}
}

func readAxis(ts *tokenScanner) (axis int, err error) {
	var (
		tok string
	)
	if tok, err = ts.next(); err != nil {
		return
	}
	return parseAxis(tok)
}

func parseAxis(tok string) (axis int, err error) {
	switch tok {
	case "x":
		axis = thermoelast.AxisX
	case "y":
		axis = thermoelast.AxisY
	case "z":
		axis = thermoelast.AxisZ
	default:
		err = fmt.Errorf("unknown axis %q", tok)
	}
	return
}

func readNodeIDs(ts *tokenScanner, m *thermoelast.Model) (ids []int, err error) {
	return readIDs(ts, m.NodeBeginIndex, len(m.Nodes), "node")
}

func readEleIDs(ts *tokenScanner, m *thermoelast.Model) (ids []int, err error) {
	return readIDs(ts, m.EleBeginIndex, len(m.Tets), "element")
}

func readIDs(ts *tokenScanner, begin, count int, kind string) (ids []int, err error) {
	for ts.peekIsInt() {
		var (
			id int
		)
		if id, err = ts.nextInt(); err != nil {
			return
		}
		if id-begin < 0 || id-begin >= count {
			err = fmt.Errorf("unknown %s id %d", kind, id)
			return
		}
		ids = append(ids, id-begin)
	}
	return
}

// readLabeled consumes a label token followed by its value.
func readLabeled(ts *tokenScanner) (val float64, err error) {
	if _, err = ts.next(); err != nil {
		return
	}
	return ts.nextFloat()
}

// tokenScanner yields whitespace-delimited tokens with one token of
// lookahead, which the section parsers use to find the end of numeric
// record runs.
type tokenScanner struct {
	s       *bufio.Scanner
	peeked  string
	hasPeek bool
}

func newTokenScanner(r io.Reader) (ts *tokenScanner) {
	ts = &tokenScanner{s: bufio.NewScanner(r)}
	ts.s.Split(bufio.ScanWords)
	return
}

func (ts *tokenScanner) next() (tok string, err error) {
	if ts.hasPeek {
		ts.hasPeek = false
		tok = ts.peeked
		return
	}
	if !ts.s.Scan() {
		if err = ts.s.Err(); err == nil {
			err = io.ErrUnexpectedEOF
		}
		return
	}
	tok = ts.s.Text()
	return
}

func (ts *tokenScanner) peek() (tok string, ok bool) {
	if !ts.hasPeek {
		if !ts.s.Scan() {
			return
		}
		ts.peeked = ts.s.Text()
		ts.hasPeek = true
	}
	tok, ok = ts.peeked, true
	return
}

func (ts *tokenScanner) peekIsInt() bool {
	tok, ok := ts.peek()
	if !ok {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err == nil
}

func (ts *tokenScanner) nextInt() (v int, err error) {
	var (
		tok string
	)
	if tok, err = ts.next(); err != nil {
		return
	}
	if v, err = strconv.Atoi(tok); err != nil {
		err = fmt.Errorf("expected integer, got %q", tok)
	}
	return
}

func (ts *tokenScanner) nextFloat() (v float64, err error) {
	var (
		tok string
	)
	if tok, err = ts.next(); err != nil {
		return
	}
	if v, err = strconv.ParseFloat(tok, 64); err != nil {
		err = fmt.Errorf("expected number, got %q", tok)
	}
	return
}

func (ts *tokenScanner) nextFloats(n int) (vals []float64, err error) {
	vals = make([]float64, n)
	for i := 0; i < n; i++ {
		if vals[i], err = ts.nextFloat(); err != nil {
			return
		}
	}
	return
}
