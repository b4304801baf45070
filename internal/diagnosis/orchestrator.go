// Package diagnosis contains the diagnostic core: the rule engine, the AI
// inference path, and the orchestrator that routes between them under quota
// and cache pressure.
package diagnosis

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terrapulse/vitals-cli/internal/diagcache"
	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/internal/quota"
	"github.com/terrapulse/vitals-cli/internal/source"
)

// Diagnoser is the AI path as the orchestrator sees it.
type Diagnoser interface {
	Diagnose(ctx context.Context, snapshot model.MetricSnapshot) (model.DiagnosisResult, error)
}

// Recorder persists finished diagnoses. Implementations must not fail the
// diagnosis on a write error; the orchestrator only logs it.
type Recorder interface {
	Record(ctx context.Context, locator, snapshotSource string, result model.DiagnosisResult) error
}

// Orchestrator wires the chain runner, governor, cache, AI path and rule
// engine into the single top-level operation. It is safe for concurrent use;
// the governor and cache serialize their own state and no lock is held
// across network calls.
type Orchestrator struct {
	runner   *source.Runner
	governor *quota.Governor
	cache    *diagcache.Cache
	ai       Diagnoser
	history  Recorder // optional

	nowFunc func() time.Time
}

// NewOrchestrator assembles the diagnostic core. history may be nil.
func NewOrchestrator(runner *source.Runner, governor *quota.Governor, cache *diagcache.Cache, ai Diagnoser, history Recorder) *Orchestrator {
	return &Orchestrator{
		runner:   runner,
		governor: governor,
		cache:    cache,
		ai:       ai,
		history:  history,
		nowFunc:  time.Now,
	}
}

// WithNow fixes the orchestrator's clock for tests.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.nowFunc = now
	return o
}

// Diagnose is the top-level operation. It is total for every known organ:
// source failures, quota exhaustion, AI transport errors and malformed AI
// output are all absorbed into fallback paths. Only an unknown organ is an
// error.
func (o *Orchestrator) Diagnose(ctx context.Context, organName, locator string) (model.DiagnosisResult, error) {
	organ, err := model.ParseOrgan(organName)
	if err != nil {
		return model.DiagnosisResult{}, err
	}

	snapshot := o.runner.Run(ctx, organ, locator)
	fingerprint := model.Fingerprint(organ, snapshot.Metrics)

	if cached, ok := o.cache.Lookup(fingerprint); ok {
		zap.L().Debug("diagnosis cache hit",
			zap.String("organ", organ.String()),
			zap.String("fingerprint", fingerprint[:12]),
		)
		return cached, nil
	}

	if !o.governor.Reserve() {
		zap.L().Info("ai quota unavailable, using rule-based diagnosis",
			zap.String("organ", organ.String()),
		)
		return o.finish(ctx, fingerprint, locator, snapshot, RuleBased(snapshot, o.nowFunc())), nil
	}

	// Budget reserved: exactly one AI attempt happens now, and it is spent
	// whether or not the call succeeds.
	result, err := o.ai.Diagnose(ctx, snapshot)
	if err != nil {
		zap.L().Warn("ai transport failure, using rule-based diagnosis",
			zap.String("organ", organ.String()),
			zap.Error(err),
		)
		result = RuleBased(snapshot, o.nowFunc())
	}
	return o.finish(ctx, fingerprint, locator, snapshot, result), nil
}

func (o *Orchestrator) finish(ctx context.Context, fingerprint, locator string, snapshot model.MetricSnapshot, result model.DiagnosisResult) model.DiagnosisResult {
	o.cache.Store(fingerprint, result)

	if o.history != nil {
		if err := o.history.Record(ctx, locator, snapshot.Source, result); err != nil {
			zap.L().Warn("failed to record diagnosis history",
				zap.String("organ", result.Organ.String()),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("diagnosis generated",
		zap.String("organ", result.Organ.String()),
		zap.String("status", string(result.Status)),
		zap.String("severity", string(result.Severity)),
		zap.String("provenance", string(result.Provenance)),
		zap.String("source", snapshot.Source),
		zap.Bool("synthetic_data", snapshot.Synthetic()),
	)
	return result
}

// ScanAll diagnoses every organ for the locator, in parallel. Each organ's
// sequence is independent except for the shared governor and cache.
func (o *Orchestrator) ScanAll(ctx context.Context, locator string) (map[model.Organ]model.DiagnosisResult, error) {
	results := make(map[model.Organ]model.DiagnosisResult, len(model.AllOrgans()))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, organ := range model.AllOrgans() {
		g.Go(func() error {
			result, err := o.Diagnose(gctx, organ.String(), locator)
			if err != nil {
				return err
			}
			mu.Lock()
			results[organ] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Status reports quota and cache state for observability. Pure snapshot, no
// side effects beyond the governor's day rollover.
type Status struct {
	Quota     quota.Snapshot `json:"quota"`
	CacheSize int            `json:"cache_size"`
}

// Status returns the current quota snapshot and cache size.
func (o *Orchestrator) Status() Status {
	return Status{
		Quota:     o.governor.Status(),
		CacheSize: o.cache.Len(),
	}
}
