package vtk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/gotherm/thermoelast"
)

/*
	Legacy VTK 3.8 ASCII UNSTRUCTURED_GRID export.

	Three files are written after a run: Undeformed.vtk carries the
	reference points, U.vtk the deformed points, both with the nodal
	displacement vectors; T.vtk carries the deformed points with the nodal
	temperature scalars. Tetrahedra are VTK cell type 10.
*/

const tetCellType = 10

// Export writes U.vtk, Undeformed.vtk and T.vtk for the finished run into
// dir ("" for the working directory).
func Export(m *thermoelast.Model, s *thermoelast.State, dir string, verbose bool) (err error) {
	if verbose {
		fmt.Println("exporting...")
	}
	for _, name := range []string{"U.vtk", "Undeformed.vtk", "T.vtk"} {
		if err = writeFile(m, s, dir, name); err != nil {
			err = fmt.Errorf("cannot write %s, results not saved: %w", name, err)
			return
		}
		if verbose {
			fmt.Printf("\t%s\n", name)
		}
	}
	if verbose {
		fmt.Println("VTK saved.")
	}
	return
}

func writeFile(m *thermoelast.Model, s *thermoelast.State, dir, name string) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filepath.Join(dir, name)); err != nil {
		return
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	defer w.Flush()

	fmt.Fprintf(w, "# vtk DataFile Version 3.8\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", name)
	fmt.Fprintf(w, "POINTS %d float\n", len(m.Nodes))
	deformed := name != "Undeformed.vtk"
	for _, n := range m.Nodes {
		x, y, z := n.X, n.Y, n.Z
		if deformed {
			x += s.CurrU[n.ID*3]
			y += s.CurrU[n.ID*3+1]
			z += s.CurrU[n.ID*3+2]
		}
		fmt.Fprintf(w, "%g %g %g\n", x, y, z)
	}
	fmt.Fprintf(w, "CELLS %d %d\n", len(m.Tets), len(m.Tets)*5)
	for _, tet := range m.Tets {
		fmt.Fprintf(w, "4 %d %d %d %d\n", tet.N[0], tet.N[1], tet.N[2], tet.N[3])
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", len(m.Tets))
	for range m.Tets {
		fmt.Fprintf(w, "%d\n", tetCellType)
	}
	fmt.Fprintf(w, "POINT_DATA %d\n", len(m.Nodes))
	if name == "T.vtk" {
		fmt.Fprintf(w, "SCALARS %s float\nLOOKUP_TABLE default\n", name)
		for _, n := range m.Nodes {
			fmt.Fprintf(w, "%g\n", s.CurrT[n.ID])
		}
	} else {
		fmt.Fprintf(w, "VECTORS %s float\n", name)
		for _, n := range m.Nodes {
			fmt.Fprintf(w, "%g %g %g\n", s.CurrU[n.ID*3], s.CurrU[n.ID*3+1], s.CurrU[n.ID*3+2])
		}
	}
	return
}

// UnstructuredGrid is the parsed form of a legacy ASCII VTK file, only as
// much of the format as Export produces.
type UnstructuredGrid struct {
	Points    [][3]float64
	Cells     [][]int
	CellTypes []int
	DataName  string
	Vectors   [][3]float64
	Scalars   []float64
}

// ReadUnstructuredGrid parses a file written by Export. It is used by the
// round-trip tests and by downstream tooling that checks solver output.
func ReadUnstructuredGrid(fileName string) (g *UnstructuredGrid, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(fileName); err != nil {
		return
	}
	defer file.Close()
	var (
		s = bufio.NewScanner(file)
		n int
	)
	s.Split(bufio.ScanWords)
	word := func() string {
		if !s.Scan() {
			return ""
		}
		return s.Text()
	}
	readInt := func() (v int) {
		fmt.Sscan(word(), &v)
		return
	}
	readFloat := func() (v float64) {
		fmt.Sscan(word(), &v)
		return
	}
	g = &UnstructuredGrid{}
	for {
		tok := word()
		if tok == "" {
			break
		}
		switch tok {
		case "POINTS":
			n = readInt()
			word() // data type
			g.Points = make([][3]float64, n)
			for i := 0; i < n; i++ {
				g.Points[i] = [3]float64{readFloat(), readFloat(), readFloat()}
			}
		case "CELLS":
			n = readInt()
			word() // total size
			g.Cells = make([][]int, n)
			for i := 0; i < n; i++ {
				nv := readInt()
				g.Cells[i] = make([]int, nv)
				for j := 0; j < nv; j++ {
					g.Cells[i][j] = readInt()
				}
			}
		case "CELL_TYPES":
			n = readInt()
			g.CellTypes = make([]int, n)
			for i := 0; i < n; i++ {
				g.CellTypes[i] = readInt()
			}
		case "POINT_DATA":
			n = readInt()
		case "VECTORS":
			g.DataName = word()
			word() // data type
			g.Vectors = make([][3]float64, n)
			for i := 0; i < n; i++ {
				g.Vectors[i] = [3]float64{readFloat(), readFloat(), readFloat()}
			}
		case "SCALARS":
			g.DataName = word()
			word() // data type
			word() // LOOKUP_TABLE
			word() // default
			g.Scalars = make([]float64, n)
			for i := 0; i < n; i++ {
				g.Scalars[i] = readFloat()
			}
		}
	}
	err = s.Err()
	return
}
