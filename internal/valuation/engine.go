// Package valuation turns normalized company disclosures into deterministic
// valuation outputs: EV corridors, sub-scores, and the composite deal
// attractiveness indices for the free, standard, and enterprise tiers.
package valuation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tapway/valuation-engine/internal/config"
	"github.com/tapway/valuation-engine/internal/model"
	"github.com/tapway/valuation-engine/internal/refdata"
)

// Engine computes valuations against one immutable reference snapshot. Given
// the same snapshot, config, and input, results are identical except for the
// generated ID and timestamp.
type Engine struct {
	snap *refdata.Snapshot
	cfg  config.EngineConfig
	now  func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for recency checks and result
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine over a validated snapshot and weight config.
func New(snap *refdata.Snapshot, cfg config.EngineConfig, opts ...Option) (*Engine, error) {
	if snap == nil {
		return nil, eris.New("valuation: nil reference snapshot")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	e := &Engine{snap: snap, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Valuate runs the selected pipeline over one company record. The only error
// paths are input validation and an unknown variant; reference lookup misses
// degrade to defaults and surface as warnings on the result.
func (e *Engine) Valuate(variant model.Variant, in model.CompanyInput) (*model.ValuationResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	res := &model.ValuationResult{
		ID:           uuid.NewString(),
		Variant:      variant,
		ComputedAt:   e.now().UTC(),
		CompanyInput: in,
	}
	w := &warnings{company: in.CompanyName}

	switch variant {
	case model.VariantFree:
		e.runFree(res, w)
	case model.VariantStandard:
		e.runStandard(res, w)
	case model.VariantEnterprise:
		e.runEnterprise(res, w)
	default:
		return nil, eris.Errorf("valuation: unknown variant %q", variant)
	}

	res.Warnings = w.list
	zap.L().Info("valuation computed",
		zap.String("id", res.ID),
		zap.String("company", in.CompanyName),
		zap.String("variant", string(variant)),
		zap.Int("warnings", len(w.list)))
	return res, nil
}

// Snapshot returns the reference snapshot the engine was built with.
func (e *Engine) Snapshot() *refdata.Snapshot { return e.snap }
