package batch

import (
	"context"
	"sync"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/filter"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// outcome is the terminal state of one record.
type outcome struct {
	filtered bool
	failure  *Failure
	row      *Row
}

// Process runs the filter chain and pipeline over a batch of records
// and aggregates the results.
//
// With workers <= 1 records are processed sequentially in input order.
// With more, a worker pool processes records independently — each record
// start-to-finish by exactly one worker — and row order is unspecified.
// The registry and steps must already be validated and are shared
// read-only across workers.
//
// Cancelling ctx stops the run at the next record boundary: records
// already dispatched complete fully, undispatched records never appear
// in the result.
func Process(
	ctx context.Context,
	rc *RunContext,
	records []*waveform.Record,
	chain *filter.Chain,
	steps []pipeline.StepSpec,
	reg *pipeline.Registry,
	workers int,
) *Result {
	if rc == nil {
		rc = NewRunContext(nil)
	}
	res := &Result{}
	if workers <= 1 {
		for _, rec := range records {
			if ctx.Err() != nil {
				break
			}
			accumulate(res, processOne(rec, chain, steps, reg), rc)
		}
		return res
	}

	jobs := make(chan *waveform.Record)
	go func() {
		defer close(jobs)
		for _, rec := range records {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- rec:
			}
		}
	}()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				o := processOne(rec, chain, steps, reg)
				mu.Lock()
				accumulate(res, o, rc)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return res
}

// processOne takes a record through filtering and the pipeline. The
// record is owned by the calling worker for the whole call.
func processOne(
	rec *waveform.Record,
	chain *filter.Chain,
	steps []pipeline.StepSpec,
	reg *pipeline.Registry,
) outcome {
	if chain != nil && !chain.Keep(rec) {
		return outcome{filtered: true}
	}
	pipeline.Run(rec, steps, reg)
	if rec.Failed() {
		return outcome{failure: &Failure{Shot: rec.Shot(), Reason: rec.FailReason()}}
	}
	row := rowFor(rec)
	return outcome{row: &row}
}

// accumulate folds one outcome into the result. Callers serialize
// access in parallel mode.
func accumulate(res *Result, o outcome, rc *RunContext) {
	res.Counts.Attempted++
	switch {
	case o.filtered:
		res.Counts.Filtered++
	case o.failure != nil:
		res.Counts.Failed++
		res.Failures = append(res.Failures, *o.failure)
		rc.Event("record_failed", map[string]any{
			"shot":   o.failure.Shot,
			"reason": o.failure.Reason,
		})
	default:
		res.Counts.Succeeded++
		res.Rows = append(res.Rows, *o.row)
	}
}
