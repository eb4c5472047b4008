package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// RunParameters are the solver run options obtained from the optional YAML
// input file. They control execution, not physics - everything physical
// comes from the model file.
type RunParameters struct {
	Title             string `yaml:"Title"`
	ParallelDegree    int    `yaml:"ParallelDegree"`    // 0 = one worker per CPU
	ProgressIncrement int    `yaml:"ProgressIncrement"` // percent between progress lines
	OutputDir         string `yaml:"OutputDir"`
	ClampRamp         bool   `yaml:"ClampRamp"` // clamp the displacement ramp factor to 1
}

// NewRunParameters returns the defaults used when no YAML file is supplied.
func NewRunParameters() *RunParameters {
	return &RunParameters{
		ProgressIncrement: 10,
	}
}

func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", rp.ParallelDegree)
	fmt.Printf("[%d]\t\t\t= Progress Increment\n", rp.ProgressIncrement)
	fmt.Printf("\"%s\"\t\t= Output Dir\n", rp.OutputDir)
	fmt.Printf("[%v]\t\t\t= Clamp Ramp\n", rp.ClampRamp)
}
