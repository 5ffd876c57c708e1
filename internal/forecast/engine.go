package forecast

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/model"
)

// Request is one forecast call.
type Request struct {
	Categories      []model.CashFlowCategory
	Drivers         []model.ForecastDriver
	StartDate       time.Time // zero means Config.Now()
	StartingBalance *float64  // nil means Config.StartingBalance
	Horizon         int
	Cadence         Cadence
}

// Engine runs forecasts. It keeps no per-call state; the random source is the
// only thing shared between runs.
type Engine struct {
	cfg    Config
	src    Source
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSource sets the random source used for volatility perturbation.
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.WeeksPerMonth == 0 {
		cfg.WeeksPerMonth = def.WeeksPerMonth
	}
	if cfg.Z90 == 0 {
		cfg.Z90 = def.Z90
	}
	if cfg.Z95 == 0 {
		cfg.Z95 = def.Z95
	}
	if cfg.GrowthMode == "" {
		cfg.GrowthMode = def.GrowthMode
	}
	if cfg.DriverPolicy == "" {
		cfg.DriverPolicy = def.DriverPolicy
	}
	if cfg.MaxCategories == 0 {
		cfg.MaxCategories = def.MaxCategories
	}
	if cfg.MaxSubcategories == 0 {
		cfg.MaxSubcategories = def.MaxSubcategories
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = def.Variants
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = NewLockedSource(NewRandomSource())
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	e.logger = e.logger.With(slog.String("component", "forecast"))
	return e
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run executes the forecast described by req.
func (e *Engine) Run(req Request) (*model.RollingForecastResult, error) {
	variant, ok := e.cfg.Variant(req.Horizon)
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedHorizon, req.Horizon, e.cfg.Horizons())
	}
	if err := e.checkLimits(req.Categories); err != nil {
		return nil, err
	}

	drivers, err := alignDrivers(req.Categories, req.Drivers, variant.Horizon, e.cfg.DriverPolicy)
	if err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = e.cfg.Now()
	}
	balance := e.cfg.StartingBalance
	if req.StartingBalance != nil {
		balance = *req.StartingBalance
	}
	cadence := req.Cadence
	if cadence == "" {
		cadence = Weekly
	}

	agg := e.aggregate(req.Categories, drivers, variant.Horizon, variant.PerturbInputs)
	labels := PeriodLabels(start, variant.Horizon, cadence)
	stats, bands, metrics := ComputeStatistics(agg.inflows, agg.outflows, labels, e.statsParams(variant, balance))

	return &model.RollingForecastResult{
		RunID:           uuid.NewString(),
		GeneratedAt:     e.cfg.Now(),
		StartDate:       start,
		Horizon:         variant.Horizon,
		Cadence:         string(cadence),
		StartingBalance: balance,
		Periods:         labels,
		Categories:      agg.categories,
		Statistics:      stats,
		Confidence:      bands,
		Metrics:         metrics,
	}, nil
}

// Run13Week runs the short-horizon variant.
func (e *Engine) Run13Week(req Request) (*model.RollingForecastResult, error) {
	req.Horizon = ShortTerm.Horizon
	return e.Run(req)
}

// Run52Week runs the long-horizon variant.
func (e *Engine) Run52Week(req Request) (*model.RollingForecastResult, error) {
	req.Horizon = LongTerm.Horizon
	return e.Run(req)
}

func (e *Engine) checkLimits(categories []model.CashFlowCategory) error {
	if len(categories) > e.cfg.MaxCategories {
		return fmt.Errorf("%w: %d categories, limit %d", ErrTooManyCategories, len(categories), e.cfg.MaxCategories)
	}
	for _, c := range categories {
		if len(c.Subcategories) > e.cfg.MaxSubcategories {
			return fmt.Errorf("%w: category %q has %d subcategories, limit %d",
				ErrTooManyCategories, c.Name, len(c.Subcategories), e.cfg.MaxSubcategories)
		}
	}
	return nil
}

// DiscardLogger returns a logger that drops everything. Useful in tests and
// quiet CLI runs.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
