package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/carenav/internal/config"
	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/store"
)

// EpisodesDir is the output subdirectory holding per-episode artifacts.
const EpisodesDir = "episodes"

// Pipeline runs the report components over the episodes of one dataset
// and persists the merged artifacts under an output directory.
type Pipeline struct {
	cfg         *config.Config
	store       store.Store
	data        *dataset.Store
	rules       []TriageRule
	specialties []string
}

// New creates a Pipeline. st may be nil, in which case run history is
// not recorded.
func New(cfg *config.Config, st store.Store, data *dataset.Store, rules []TriageRule) *Pipeline {
	if len(rules) == 0 {
		rules = DefaultTriageRules
	}
	specialties := cfg.Pipeline.DefaultSpecialty
	if len(specialties) == 0 {
		specialties = DefaultSpecialties
	}
	return &Pipeline{
		cfg:         cfg,
		store:       st,
		data:        data,
		rules:       rules,
		specialties: specialties,
	}
}

// OutputDir returns the configured output root.
func (p *Pipeline) OutputDir() string { return p.cfg.Output.Dir }

// EpisodeOutcome is the terminal state of one episode.
type EpisodeOutcome struct {
	Episode model.Episode
	Status  model.EpisodeStatus
	Output  *model.EpisodeOutput
	Phases  []model.PhaseResult
	Reason  string
	Err     error
}

// RunEpisode processes one episode end to end and writes its artifact.
// A missing patient yields a skipped outcome; a missing or malformed
// document yields a failed outcome carrying the error. runID may be empty
// when no run is being recorded.
func (p *Pipeline) RunEpisode(ctx context.Context, runID string, ep model.Episode, refs *dataset.References) EpisodeOutcome {
	log := zap.L().With(zap.String("episode_id", ep.EpisodeID), zap.String("patient_id", ep.PatientID))
	outcome := EpisodeOutcome{Episode: ep}

	if err := ctx.Err(); err != nil {
		outcome.Status = model.EpisodeStatusFailed
		outcome.Err = eris.Wrapf(err, "pipeline: episode %s", ep.EpisodeID)
		outcome.Reason = outcome.Err.Error()
		return outcome
	}

	patient, ok := refs.Patient(ep.PatientID)
	if !ok {
		outcome.Status = model.EpisodeStatusSkipped
		outcome.Reason = "patient not found: " + ep.PatientID
		log.Warn("pipeline: skipping episode, patient not found")
		p.record(ctx, runID, outcome)
		return outcome
	}

	recordPhase := func(name string, start time.Time, meta map[string]any, err error) {
		duration := time.Since(start).Milliseconds()

		pr := model.PhaseResult{Name: name, Duration: duration, Metadata: meta}
		if err != nil {
			pr.Status = model.PhaseStatusFailed
			pr.Error = err.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(err),
			)
		} else {
			pr.Status = model.PhaseStatusComplete
			log.Debug("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}
		outcome.Phases = append(outcome.Phases, pr)
	}

	// trackPhase times a phase that touches the filesystem and can fail.
	trackPhase := func(name string, fn func() (map[string]any, error)) error {
		start := time.Now()
		meta, err := fn()
		recordPhase(name, start, meta, err)
		return err
	}

	// runComponent times a pure component; it always completes.
	runComponent := func(name string, fn func() map[string]any) {
		start := time.Now()
		recordPhase(name, start, fn(), nil)
	}

	fail := func(err error) EpisodeOutcome {
		outcome.Status = model.EpisodeStatusFailed
		outcome.Err = err
		outcome.Reason = err.Error()
		p.record(ctx, runID, outcome)
		return outcome
	}

	var docs *model.DocumentSet
	var prefs *model.Preferences
	if err := trackPhase("load", func() (map[string]any, error) {
		var err error
		if docs, err = p.data.LoadDocuments(ep.EpisodeID); err != nil {
			return nil, err
		}
		if prefs, err = p.data.LoadPreferences(patient.PatientID); err != nil {
			return nil, err
		}
		return map[string]any{"bills": len(docs.Billing)}, nil
	}); err != nil {
		return fail(err)
	}

	out := &model.EpisodeOutput{
		EpisodeID: ep.EpisodeID,
		PatientID: patient.PatientID,
	}

	runComponent("triage", func() map[string]any {
		out.Triage = Triage(docs.Intake, p.rules, p.specialties)
		return map[string]any{"specialties": len(out.Triage.SuggestedSpecialties)}
	})
	runComponent("provider_match", func() map[string]any {
		out.ProviderMatching = MatchProviders(patient, refs.Providers, out.Triage.SuggestedSpecialties, p.cfg.Pipeline.ProviderLimit)
		return map[string]any{
			"providers":       len(out.ProviderMatching.Providers),
			"in_network_only": out.ProviderMatching.InNetworkOnly,
		}
	})
	runComponent("summarize", func() map[string]any {
		out.Summary = Summarize(docs.Transcript, docs.ClinicalNote, docs.Discharge)
		return nil
	})
	runComponent("extract", func() map[string]any {
		out.StructuredExtraction = Extract(docs.Intake, docs.ClinicalNote, docs.Discharge)
		return nil
	})
	runComponent("consent", func() map[string]any {
		out.ConsentReview = ReviewConsent(docs.Consent)
		return map[string]any{"clauses": len(docs.Consent.Clauses)}
	})
	runComponent("billing", func() map[string]any {
		out.BillingReconciliation = ReconcileBilling(docs.Billing, docs.EOB)
		return map[string]any{"groups": len(out.BillingReconciliation.GroupedCharges)}
	})
	runComponent("action_plan", func() map[string]any {
		out.ActionPlan = PersonalizeActionPlan(docs.Discharge, docs.ClinicalNote, *prefs)
		return map[string]any{"checklist": len(out.ActionPlan.Checklist)}
	})

	if err := trackPhase("persist", func() (map[string]any, error) {
		path := EpisodePath(p.cfg.Output.Dir, ep.EpisodeID)
		if err := dataset.WriteJSON(path, out); err != nil {
			return nil, eris.Wrapf(err, "pipeline: persist episode %s", ep.EpisodeID)
		}
		return map[string]any{"path": path}, nil
	}); err != nil {
		return fail(err)
	}

	outcome.Status = model.EpisodeStatusSuccess
	outcome.Output = out
	log.Info("pipeline: episode complete", zap.Int("phases", len(outcome.Phases)))
	p.record(ctx, runID, outcome)
	return outcome
}

// EpisodePath returns the artifact path for an episode under outputDir.
func EpisodePath(outputDir, episodeID string) string {
	return filepath.Join(outputDir, EpisodesDir, episodeID+".json")
}

// record writes the outcome to run history. Store failures are logged and
// never change the episode's outcome.
func (p *Pipeline) record(ctx context.Context, runID string, o EpisodeOutcome) {
	if p.store == nil || runID == "" {
		return
	}
	rec := &model.EpisodeRecord{
		RunID:     runID,
		EpisodeID: o.Episode.EpisodeID,
		PatientID: o.Episode.PatientID,
		Status:    o.Status,
		Reason:    o.Reason,
		Phases:    o.Phases,
	}
	// Detached: a fail-fast abort must still record the failing episode.
	if err := p.store.RecordEpisode(context.WithoutCancel(ctx), rec); err != nil {
		zap.L().Warn("pipeline: failed to record episode",
			zap.String("run_id", runID),
			zap.String("episode_id", o.Episode.EpisodeID),
			zap.Error(err),
		)
	}
}

// RunOne processes a single episode by id without recording run history.
func (p *Pipeline) RunOne(ctx context.Context, episodeID string) (EpisodeOutcome, error) {
	refs, err := p.data.LoadReferences(ctx)
	if err != nil {
		return EpisodeOutcome{}, eris.Wrap(err, "pipeline: load references")
	}
	for _, ep := range refs.Episodes {
		if ep.EpisodeID != episodeID {
			continue
		}
		o := p.RunEpisode(ctx, "", ep, refs)
		if o.Status == model.EpisodeStatusFailed {
			return o, o.Err
		}
		return o, nil
	}
	return EpisodeOutcome{}, eris.Errorf("pipeline: episode not found: %s", episodeID)
}
