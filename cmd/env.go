package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/terrapulse/vitals-cli/internal/diagcache"
	"github.com/terrapulse/vitals-cli/internal/diagnosis"
	"github.com/terrapulse/vitals-cli/internal/history"
	"github.com/terrapulse/vitals-cli/internal/quota"
	"github.com/terrapulse/vitals-cli/internal/resilience"
	"github.com/terrapulse/vitals-cli/internal/source"
	anthropicpkg "github.com/terrapulse/vitals-cli/pkg/anthropic"
	"github.com/terrapulse/vitals-cli/pkg/erddap"
	"github.com/terrapulse/vitals-cli/pkg/firms"
	"github.com/terrapulse/vitals-cli/pkg/gfw"
	"github.com/terrapulse/vitals-cli/pkg/gml"
	"github.com/terrapulse/vitals-cli/pkg/openaq"
)

// diagEnv holds the initialized clients, orchestrator and history store
// shared by the diagnose/scan/serve commands.
type diagEnv struct {
	Orchestrator *diagnosis.Orchestrator
	History      *history.Store // may be nil
}

// Close releases resources held by the environment.
func (e *diagEnv) Close() {
	if e.History != nil {
		_ = e.History.Close()
	}
}

// initEnv sets up the source clients, adapter chains, quota governor, cache,
// AI path and history store. Callers should defer env.Close().
func initEnv(ctx context.Context) (*diagEnv, error) {
	firmsClient := firms.NewClient(cfg.FIRMS.Key, firms.WithBaseURL(cfg.FIRMS.BaseURL))
	gfwClient := gfw.NewClient(cfg.GFW.Key, gfw.WithBaseURL(cfg.GFW.BaseURL))
	erddapClient := erddap.NewClient(
		erddap.WithBaseURL(cfg.ERDDAP.BaseURL),
		erddap.WithDataset(cfg.ERDDAP.DatasetID),
	)
	gmlClient := gml.NewClient(gml.WithAddress(cfg.GML.Addr), gml.WithPath(cfg.GML.Path))
	openaqClient := openaq.NewClient(cfg.OpenAQ.Key, openaq.WithBaseURL(cfg.OpenAQ.BaseURL))

	chains := source.DefaultChains(
		source.NewFIRMSAdapter(firmsClient, cfg.FIRMS.Days),
		source.NewGFWAdapter(gfwClient, cfg.FIRMS.Days),
		source.NewERDDAPAdapter(erddapClient, 0),
		source.NewGMLAdapter(gmlClient),
		source.NewOpenAQAdapter(openaqClient),
	)
	breakers := resilience.NewBreakerSet(cfg.Sources.BreakerThreshold, cfg.Sources.BreakerCooldown())
	runner := source.NewRunner(chains, cfg.Sources.Timeout(), breakers)

	governor := quota.NewGovernor(cfg.Quota.MinInterval(), cfg.Quota.DailyCeiling)
	cache := diagcache.New(cfg.Cache.Validity())

	ai := diagnosis.NewAIDiagnoser(
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		cfg.Anthropic.Temperature,
	)

	var hist *history.Store
	if cfg.History.Path != "" {
		st, err := history.New(cfg.History.Path)
		if err != nil {
			zap.L().Warn("history store init failed, continuing without persistence", zap.Error(err))
		} else if err := st.Migrate(ctx); err != nil {
			zap.L().Warn("history migrate failed, continuing without persistence", zap.Error(err))
			_ = st.Close()
		} else {
			hist = st
		}
	}

	// A nil *Store must not become a non-nil Recorder interface.
	var recorder diagnosis.Recorder
	if hist != nil {
		recorder = hist
	}

	return &diagEnv{
		Orchestrator: diagnosis.NewOrchestrator(runner, governor, cache, ai, recorder),
		History:      hist,
	}, nil
}
