/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gotherm/InputParameters"
	"github.com/notargets/gotherm/readfiles"
	"github.com/notargets/gotherm/thermoelast"
	"github.com/notargets/gotherm/vtk"
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve <modelFile>",
	Short: "Run the coupled thermo-elastodynamic simulation for a model file",
	Long: `
Reads a whitespace-delimited model file (nodes, materials, elements,
boundary conditions, time parameters), advances the coupled displacement
and temperature fields with the explicit two-pass kernel, then writes
Undeformed.vtk, U.vtk and T.vtk,

gotherm solve Liver_Iso.txt`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing input argument (e.g., Liver_Iso.txt)")
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		rp := InputParameters.NewRunParameters()
		if icFile, _ := cmd.Flags().GetString("inputParametersFile"); len(icFile) != 0 {
			data, err := os.ReadFile(icFile)
			if err != nil {
				return fmt.Errorf("cannot open file %s: %w", icFile, err)
			}
			if err = rp.Parse(data); err != nil {
				return fmt.Errorf("parsing %s: %w", icFile, err)
			}
			rp.Print()
		}
		if nproc, _ := cmd.Flags().GetInt("nproc"); nproc != 0 {
			rp.ParallelDegree = nproc
		}
		return Run(args[0], rp)
	},
}

// Run loads the model, runs the simulation and exports the VTK results.
func Run(modelFile string, rp *InputParameters.RunParameters) (err error) {
	var (
		m *thermoelast.Model
	)
	if m, err = readfiles.ReadModel(modelFile, true); err != nil {
		return
	}
	m.PrintInfo()
	sv := thermoelast.NewSolver(m, rp.ParallelDegree)
	sv.Verbose = true
	if rp.ProgressIncrement != 0 {
		sv.ProgressIncrement = rp.ProgressIncrement
	}
	sv.State.ClampRamp = rp.ClampRamp
	if err = sv.Run(); err != nil {
		return
	}
	return vtk.Export(m, sv.State, rp.OutputDir, true)
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with run parameters")
	solveCmd.Flags().Int("nproc", 0, "number of worker goroutines, 0 = one per CPU")
	solveCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}
