// Package process implements `nmbi process`: the full batch run from
// config and shot bundle to result rows.
package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/algorithms"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/batch"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/config"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/export"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/filter"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/ingest"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/provenance"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagShots   string
	flagOut     string
	flagWorkers int
	flagTrace   string
	flagVerbose bool
)

// Cmd represents the `nmbi process` command.
var Cmd = &cobra.Command{
	Use:           "process",
	Short:         "Process a shot bundle through the configured pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		return runProcess()
	},
}

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to run config (.cue)")
	Cmd.Flags().StringVar(&flagShots, "shots", "", "Shot bundle path (overrides config input.shots)")
	Cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Result CSV path (overrides config output.path)")
	Cmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "Worker count (overrides config workers)")
	Cmd.Flags().StringVar(&flagTrace, "trace", "", "Optional per-bin trace CSV path")
	Cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// summary is the single JSON line printed to stdout on completion.
type summary struct {
	OK        bool   `json:"ok"`
	Attempted int    `json:"attempted"`
	Filtered  int    `json:"filtered"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Output    string `json:"output"`
}

func runProcess() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	run, err := config.Parse(flagConfig)
	if err != nil {
		return err
	}
	shotsPath := run.Input.Shots
	if flagShots != "" {
		shotsPath = flagShots
	}
	if shotsPath == "" {
		return errors.New("no shot bundle: set input.shots in the config or pass --shots")
	}
	outPath := run.Output.Path
	if flagOut != "" {
		outPath = flagOut
	}
	if outPath == "" {
		return errors.New("no output path: set output.path in the config or pass --out")
	}
	workers := run.Workers
	if flagWorkers > 0 {
		workers = flagWorkers
	}
	if flagTrace != "" && len(run.Steps) > 0 {
		return errors.New("--trace requires the built-in pipeline; custom steps do not declare trace columns")
	}

	logProvenance(log, flagConfig)

	specs, err := config.BuildFilterSpecs(run)
	if err != nil {
		return err
	}
	chain, err := filter.Compile(specs)
	if err != nil {
		return err
	}
	loader, err := config.BuildLoader(run, flagConfig)
	if err != nil {
		return err
	}
	if err := loader.Validate(); err != nil {
		return err
	}

	reg := algorithms.DefaultRegistry()
	steps := config.BuildSteps(run)
	known := append(ingest.RawPaths(), loader.Paths()...)
	if err := pipeline.Validate(steps, reg, known); err != nil {
		return err
	}

	records, err := ingest.Load(shotsPath)
	if err != nil {
		return err
	}
	if err := loader.Apply(records); err != nil {
		return err
	}
	log.Info("loaded shots", "count", len(records), "path", shotsPath)

	start := time.Now()
	rc := batch.NewRunContext(log)
	res := batch.Process(ctx, rc, records, chain, steps, reg, workers)
	res.SortByShot()
	log.Info("batch done",
		"attempted", res.Counts.Attempted,
		"filtered", res.Counts.Filtered,
		"succeeded", res.Counts.Succeeded,
		"failed", res.Counts.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted after %d of %d records", res.Counts.Attempted, len(records))
	}

	if err := export.WriteResultRows(outPath, res); err != nil {
		return err
	}
	if flagTrace != "" {
		// Filtered records never ran the pipeline and have no trace
		// columns; trace only the succeeded set.
		kept := make(map[string]bool, len(res.Rows))
		for _, row := range res.Rows {
			kept[row.Shot] = true
		}
		traced := records[:0:0]
		for _, rec := range records {
			if kept[rec.Shot()] {
				traced = append(traced, rec)
			}
		}
		tw := export.NewTraceWriter(traceColumns())
		if err := tw.WriteFile(flagTrace, traced); err != nil {
			return err
		}
		log.Info("wrote trace", "path", flagTrace, "records", len(traced))
	}

	out := summary{
		OK:        true,
		Attempted: res.Counts.Attempted,
		Filtered:  res.Counts.Filtered,
		Succeeded: res.Counts.Succeeded,
		Failed:    res.Counts.Failed,
		Output:    outPath,
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(b))
	return nil
}

// traceColumns are the per-bin series of the built-in pipeline worth
// inspecting against the original plots.
func traceColumns() map[string]string {
	return map[string]string{
		"height":    "processed/ht",
		"wf_raw":    "raw/wf",
		"wf_smooth": "processed/wf_noise_norm_smooth",
		"dp_dz":     "processed/dp_dz",
	}
}

// logProvenance records the config repository revision when there is
// one; runs from a plain directory proceed without it.
func logProvenance(log *slog.Logger, cfgPath string) {
	info, err := provenance.Describe(cfgPath)
	if err != nil {
		if errors.Is(err, provenance.ErrNoRepository) {
			log.Debug("config not under version control", "path", cfgPath)
		} else {
			log.Warn("provenance unavailable", "error", err)
		}
		return
	}
	log.Info("config revision", "commit", info.Commit, "branch", info.Branch)
}
