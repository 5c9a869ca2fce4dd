/*
Package batch scores lists of records concurrently with a local model.

Records are pushed as tasks into a Queue and pulled by a fixed number of
workers. Results keep the order of the input records.
*/
package batch

import (
	"context"
	"fmt"

	"github.com/antoniomachine/bigml/dataset"
	"github.com/antoniomachine/bigml/model"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

/*
Predictor is what batches score records with. *model.Dispatcher and
every model.Evaluator satisfy it; it must be safe for concurrent use.
*/
type Predictor interface {
	Predict(record map[string]interface{}, opts model.Options) (*prediction.Record, error)
}

/*
Result is the outcome of scoring the record at Index: its prediction or
the error the predictor returned for it.
*/
type Result struct {
	Index      int
	Prediction *prediction.Record
	Err        error
}

/*
Runner scores batches of records.
*/
type Runner struct {
	Predictor Predictor
	Options   model.Options
	Workers   int
	Logger    zerolog.Logger
}

/*
Run takes a context and a list of records and scores every record with
the runner's predictor using Workers goroutines (at least one). It
returns one Result per record, in input order. A record that cannot be
scored does not stop the batch: its error is kept in its Result. Run
returns an error only if the context is done or the queue fails.
*/
func (r *Runner) Run(ctx context.Context, records []dataset.Record) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := NewQueue()
	for i, rec := range records {
		if err := q.Push(ctx, &Task{Index: i, Record: rec}); err != nil {
			return nil, fmt.Errorf("queueing record %d: %v", i, err)
		}
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			return r.work(gctx, w, q, results)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	pending, inFlight, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}
	if pending+inFlight > 0 {
		return nil, fmt.Errorf("batch finished with %d records pending and %d in flight", pending, inFlight)
	}
	return results, nil
}

func (r *Runner) work(ctx context.Context, worker int, q Queue, results []Result) error {
	var scored int
	for {
		t, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if t == nil {
			r.Logger.Debug().Int("worker", worker).Int("scored", scored).Msg("batch worker done")
			return nil
		}
		p, err := r.Predictor.Predict(t.Record, r.Options)
		if err != nil {
			r.Logger.Debug().Err(err).Int("record", t.Index).Msg("record could not be scored")
		}
		// each index is pulled by exactly one worker
		results[t.Index] = Result{Index: t.Index, Prediction: p, Err: err}
		if err = q.Complete(ctx, t.Index); err != nil {
			return err
		}
		scored++
	}
}

/*
Run scores the records with the predictor using the given number of
workers and default options. See Runner.Run.
*/
func Run(ctx context.Context, p Predictor, records []dataset.Record, workers int) ([]Result, error) {
	r := &Runner{Predictor: p, Workers: workers, Logger: zerolog.Nop()}
	return r.Run(ctx, records)
}
