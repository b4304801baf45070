package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/internal/resilience"
)

// errBreakerOpen marks a source skipped because its breaker is open; the
// chain treats it like any other adapter failure.
var errBreakerOpen = eris.New("source circuit breaker open")

// DefaultAdapterTimeout bounds each adapter's network call.
const DefaultAdapterTimeout = 12 * time.Second

// Runner walks an organ's adapter chain in priority order and always
// produces exactly one snapshot. A chain's last adapter is expected to be a
// synthetic generator, so total source exhaustion degrades to generated
// data instead of an error.
type Runner struct {
	chains   map[model.Organ][]Adapter
	timeout  time.Duration
	breakers *resilience.BreakerSet
}

// NewRunner builds a runner over the given chains. Breakers may be nil to
// disable per-source circuit breaking.
func NewRunner(chains map[model.Organ][]Adapter, timeout time.Duration, breakers *resilience.BreakerSet) *Runner {
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Runner{chains: chains, timeout: timeout, breakers: breakers}
}

// DefaultChains assembles the production chain order for every organ:
// lungs: FIRMS satellite detections → GFW paid alerts → synthetic;
// heart: NOAA buoys → NOAA GML CO2 record → synthetic;
// skin:  OpenAQ → synthetic.
func DefaultChains(firmsA, gfwA, erddapA, gmlA, openaqA Adapter) map[model.Organ][]Adapter {
	return map[model.Organ][]Adapter{
		model.OrganLungs: {firmsA, gfwA, NewSyntheticAdapter(model.OrganLungs)},
		model.OrganHeart: {erddapA, gmlA, NewSyntheticAdapter(model.OrganHeart)},
		model.OrganSkin:  {openaqA, NewSyntheticAdapter(model.OrganSkin)},
	}
}

// Run obtains one snapshot for the organ. Adapter errors, timeouts, open
// breakers and synthetic-tagged results all advance the chain; the last
// result seen is returned when nothing genuine turns up. Run never fails.
func (r *Runner) Run(ctx context.Context, organ model.Organ, locator string) model.MetricSnapshot {
	var last model.MetricSnapshot
	haveLast := false

	for _, adapter := range r.chains[organ] {
		snap, err := r.fetchOne(ctx, adapter, locator)
		if err != nil {
			zap.L().Warn("source adapter failed, advancing chain",
				zap.String("organ", organ.String()),
				zap.String("adapter", adapter.Name()),
				zap.Bool("transient", resilience.IsTransient(err)),
				zap.Error(err),
			)
			continue
		}

		last, haveLast = snap, true
		if !snap.Synthetic() {
			return snap
		}
	}

	if haveLast {
		return last
	}

	// Every adapter errored, including the terminal generator (only possible
	// with a misassembled chain). Generate directly so the caller still gets
	// a snapshot.
	snap, _ := NewSyntheticAdapter(organ).Fetch(ctx, locator)
	zap.L().Error("source chain exhausted without result, generated terminal snapshot",
		zap.String("organ", organ.String()),
	)
	return snap
}

// fetchOne runs a single adapter under its timeout and breaker. No shared
// lock is held while the network call is in flight; the breaker serializes
// only its own counters.
func (r *Runner) fetchOne(ctx context.Context, adapter Adapter, locator string) (model.MetricSnapshot, error) {
	var breaker *resilience.Breaker
	if r.breakers != nil && adapter.Name() != model.SourceSynthetic {
		breaker = r.breakers.For(adapter.Name())
		if !breaker.Allow() {
			return model.MetricSnapshot{}, eris.Wrapf(errBreakerOpen, "%s", adapter.Name())
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := adapter.Fetch(callCtx, locator)
	if breaker != nil {
		breaker.Record(err)
	}
	return snap, err
}
