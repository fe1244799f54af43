// Package validate implements `nmbi validate`: full configuration
// checking — config parse, filter compilation, parameter sources, and
// static pipeline validation — without reading any shot data.
package validate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/algorithms"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/config"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/filter"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/ingest"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/spf13/cobra"
)

var cfgPath string

// Cmd represents the `nmbi validate` command.
var Cmd = &cobra.Command{
	Use:           "validate",
	Short:         "Validate a run config and its pipeline without processing data",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		report, err := check(cfgPath)
		if err != nil {
			return err
		}
		// Success output must be a single JSON line.
		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	},
}

type checkReport struct {
	OK      bool `json:"ok"`
	Steps   int  `json:"steps"`
	Filters int  `json:"filters"`
	Params  int  `json:"parameters"`
}

func check(path string) (checkReport, error) {
	run, err := config.Parse(path)
	if err != nil {
		return checkReport{}, err
	}

	specs, err := config.BuildFilterSpecs(run)
	if err != nil {
		return checkReport{}, err
	}
	chain, err := filter.Compile(specs)
	if err != nil {
		return checkReport{}, err
	}

	loader, err := config.BuildLoader(run, path)
	if err != nil {
		return checkReport{}, err
	}
	if err := loader.Validate(); err != nil {
		return checkReport{}, err
	}

	steps := config.BuildSteps(run)
	known := append(ingest.RawPaths(), loader.Paths()...)
	if err := pipeline.Validate(steps, algorithms.DefaultRegistry(), known); err != nil {
		return checkReport{}, err
	}

	return checkReport{
		OK:      true,
		Steps:   len(steps),
		Filters: chain.Len(),
		Params:  len(run.Parameters),
	}, nil
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to run config (.cue)")
}
