package thermoelast

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gotherm/utils"
)

// ErrDiverged is returned when explicit integration produces a non-finite
// displacement or temperature.
var ErrDiverged = errors.New("solution diverged, simulation aborted - try a smaller time step")

// Solver advances a finalized model through its full time horizon. The two
// phases of each step are partitioned over ParallelDegree goroutines; the
// solver is strictly sequential across steps.
type Solver struct {
	Model     *Model
	State     *State
	ElemParts *utils.PartitionMap
	NodeParts *utils.PartitionMap

	Verbose           bool
	ProgressIncrement int // percent between progress lines, default 10
}

// NewSolver creates the run state and the work partitions. nproc = 0 uses
// one worker per CPU.
func NewSolver(m *Model, nproc int) (sv *Solver) {
	if nproc == 0 {
		nproc = runtime.NumCPU()
	}
	sv = &Solver{
		Model:             m,
		State:             NewState(m),
		ElemParts:         utils.NewPartitionMap(nproc, len(m.Tets)),
		NodeParts:         utils.NewPartitionMap(nproc, len(m.Nodes)),
		ProgressIncrement: 10,
	}
	return
}

// Run executes every step of the simulation. On divergence the error is
// returned immediately and the state holds the last completed step.
func (sv *Solver) Run() error {
	var (
		m        = sv.Model
		progress = 0
		start    = time.Now()
	)
	if sv.Verbose {
		fmt.Printf("using %d workers\ncomputing...\n", sv.ElemParts.ParallelDegree)
	}
	for step := 0; step < m.NumSteps; step++ {
		if pct := 100 * (step + 1) / m.NumSteps; sv.Verbose && pct >= progress+sv.ProgressIncrement {
			progress += sv.ProgressIncrement
			fmt.Printf("\t(%d%%)\n", progress)
		}
		sv.State.RunTimeBC(step)
		if err := sv.StepOne(); err != nil {
			return err
		}
	}
	if sv.Verbose {
		fmt.Printf("computation time: %v\n", time.Since(start).Round(time.Millisecond))
		sv.printSummary()
	}
	return nil
}

func (sv *Solver) printSummary() {
	var (
		s = sv.State
	)
	fmt.Printf("max |U|:\t%g\n", floats.Norm(s.CurrU, math.Inf(1)))
	fmt.Printf("T range:\t[%g, %g]\n", floats.Min(s.CurrT), floats.Max(s.CurrT))
}
