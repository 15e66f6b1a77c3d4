package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/carenav/internal/model"
)

// BatchResult is the outcome of a full run over a dataset.
type BatchResult struct {
	RunID    string
	Outcomes []EpisodeOutcome
	Index    model.RunIndex
	Summary  model.RunSummary
}

// Outputs returns the successful episode artifacts in episode-list order.
func (r *BatchResult) Outputs() []model.EpisodeOutput {
	out := []model.EpisodeOutput{}
	for _, o := range r.Outcomes {
		if o.Status == model.EpisodeStatusSuccess && o.Output != nil {
			out = append(out, *o.Output)
		}
	}
	return out
}

// Count returns how many outcomes ended in status.
func (r *BatchResult) Count(status model.EpisodeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// RunAll processes every episode in the dataset on a bounded worker group,
// then writes the index and run summary once all workers have finished.
// With batch.fail_fast set, the first failed episode cancels the batch and
// is returned without writing the index.
func (p *Pipeline) RunAll(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{}

	if p.store != nil {
		run, err := p.store.CreateRun(ctx, p.data.Root(), p.cfg.Output.Dir)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		result.RunID = run.ID
	}
	log := zap.L().With(zap.String("run_id", result.RunID))

	refs, err := p.data.LoadReferences(ctx)
	if err != nil {
		err = eris.Wrap(err, "pipeline: load references")
		p.finish(ctx, result, start, model.RunStatusFailed, err)
		return nil, err
	}
	p.setStatus(ctx, result.RunID, model.RunStatusProcessing)

	concurrency := p.cfg.Batch.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	log.Info("pipeline: processing batch",
		zap.Int("episodes", len(refs.Episodes)),
		zap.Int("concurrency", concurrency),
		zap.Bool("fail_fast", p.cfg.Batch.FailFast),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	result.Outcomes = make([]EpisodeOutcome, len(refs.Episodes))
	for i, ep := range refs.Episodes {
		g.Go(func() error {
			o := p.RunEpisode(gctx, result.RunID, ep, refs)
			result.Outcomes[i] = o
			if o.Status == model.EpisodeStatusFailed {
				if p.cfg.Batch.FailFast {
					return o.Err
				}
				log.Error("pipeline: episode failed, continuing",
					zap.String("episode_id", ep.EpisodeID),
					zap.Error(o.Err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		err = eris.Wrap(err, "pipeline: batch aborted")
		p.finish(ctx, result, start, model.RunStatusFailed, err)
		return result, err
	}
	if err := ctx.Err(); err != nil {
		err = eris.Wrap(err, "pipeline: batch cancelled")
		p.finish(ctx, result, start, model.RunStatusFailed, err)
		return result, err
	}

	p.setStatus(ctx, result.RunID, model.RunStatusIndexing)
	index, summary, err := WriteIndex(p.cfg.Output.Dir, result.Count(model.EpisodeStatusSuccess))
	if err != nil {
		p.finish(ctx, result, start, model.RunStatusFailed, err)
		return result, err
	}
	result.Index = index
	result.Summary = summary

	p.finish(ctx, result, start, model.RunStatusComplete, nil)
	log.Info("pipeline: batch complete",
		zap.Int("succeeded", result.Count(model.EpisodeStatusSuccess)),
		zap.Int("skipped", result.Count(model.EpisodeStatusSkipped)),
		zap.Int("failed", result.Count(model.EpisodeStatusFailed)),
		zap.Int("index_total", index.Total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (p *Pipeline) setStatus(ctx context.Context, runID string, status model.RunStatus) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: failed to update run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, r *BatchResult, start time.Time, status model.RunStatus, runErr error) {
	if p.store == nil || r.RunID == "" {
		return
	}
	res := &model.RunResult{
		Episodes:   len(r.Outcomes),
		Succeeded:  r.Count(model.EpisodeStatusSuccess),
		Skipped:    r.Count(model.EpisodeStatusSkipped),
		Failed:     r.Count(model.EpisodeStatusFailed),
		IndexTotal: r.Index.Total,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		res.Error = runErr.Error()
	}
	if err := p.store.CompleteRun(context.WithoutCancel(ctx), r.RunID, status, res); err != nil {
		zap.L().Warn("pipeline: failed to complete run", zap.String("run_id", r.RunID), zap.Error(err))
	}
}
