package refdata

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Querier is the subset of pgxpool.Pool the loader needs; pgxmock satisfies
// it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresProvider loads the constant_* reference tables from Postgres.
// All queries are read-only; the engine never writes.
type PostgresProvider struct {
	pool    Querier
	version string
}

// NewPostgres creates a provider over an existing pool. The version string
// tags snapshots loaded by this provider.
func NewPostgres(pool Querier, version string) *PostgresProvider {
	return &PostgresProvider{pool: pool, version: version}
}

// Load reads every reference series into an immutable snapshot.
func (p *PostgresProvider) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Version:       p.version,
		Sectors:       make(map[string]SectorMetrics),
		Countries:     make(map[string]float64),
		FXRates:       make(map[string]float64),
		CreditRatings: make(map[string]int),
	}

	if err := p.loadSectors(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadCountries(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadFXRates(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadCreditRatings(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadSizeBands(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadConcentrationBands(ctx, snap); err != nil {
		return nil, err
	}
	if err := p.loadDealSizeBands(ctx, snap); err != nil {
		return nil, err
	}

	out := snap.normalized()
	if err := out.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("refdata: snapshot loaded from postgres",
		zap.String("version", out.Version),
		zap.Int("sectors", len(out.Sectors)),
		zap.Int("countries", len(out.Countries)),
		zap.Int("fx_rates", len(out.FXRates)),
	)

	return out, nil
}

func (p *PostgresProvider) loadSectors(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT subsector_name_updated, base_ebit_multiple, target_ebit_margin_pct, target_cagr_pct, COALESCE(score, 0)
		 FROM constant_sector_metrics`)
	if err != nil {
		return eris.Wrap(err, "refdata: query sector metrics")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var m SectorMetrics
		if err := rows.Scan(&name, &m.BaseMultiple, &m.TargetMarginPct, &m.TargetCAGRPct, &m.GrowthScore); err != nil {
			return eris.Wrap(err, "refdata: scan sector metrics")
		}
		snap.Sectors[name] = m
	}
	return eris.Wrap(rows.Err(), "refdata: iterate sector metrics")
}

func (p *PostgresProvider) loadCountries(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT country_code, delta_multiple FROM constant_country_adjustments`)
	if err != nil {
		return eris.Wrap(err, "refdata: query country adjustments")
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var delta float64
		if err := rows.Scan(&code, &delta); err != nil {
			return eris.Wrap(err, "refdata: scan country adjustments")
		}
		snap.Countries[code] = delta
	}
	return eris.Wrap(rows.Err(), "refdata: iterate country adjustments")
}

func (p *PostgresProvider) loadFXRates(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT currency_code, rate_to_eur FROM constant_fx_rates`)
	if err != nil {
		return eris.Wrap(err, "refdata: query fx rates")
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var rate float64
		if err := rows.Scan(&code, &rate); err != nil {
			return eris.Wrap(err, "refdata: scan fx rates")
		}
		snap.FXRates[code] = rate
	}
	return eris.Wrap(rows.Err(), "refdata: iterate fx rates")
}

func (p *PostgresProvider) loadCreditRatings(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT rating, score FROM constant_credit_ratings`)
	if err != nil {
		return eris.Wrap(err, "refdata: query credit ratings")
	}
	defer rows.Close()

	for rows.Next() {
		var rating string
		var score int
		if err := rows.Scan(&rating, &score); err != nil {
			return eris.Wrap(err, "refdata: scan credit ratings")
		}
		snap.CreditRatings[rating] = score
	}
	return eris.Wrap(rows.Err(), "refdata: iterate credit ratings")
}

func (p *PostgresProvider) loadSizeBands(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT rev_min_eur, delta_multiple FROM constant_size_adjustments ORDER BY rev_min_eur ASC`)
	if err != nil {
		return eris.Wrap(err, "refdata: query size adjustments")
	}
	defer rows.Close()

	for rows.Next() {
		var b Band
		if err := rows.Scan(&b.Min, &b.Delta); err != nil {
			return eris.Wrap(err, "refdata: scan size adjustments")
		}
		snap.SizeBands = append(snap.SizeBands, b)
	}
	return eris.Wrap(rows.Err(), "refdata: iterate size adjustments")
}

func (p *PostgresProvider) loadConcentrationBands(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT top3_min_pct, delta_multiple FROM constant_concentration_adjustments ORDER BY top3_min_pct ASC`)
	if err != nil {
		return eris.Wrap(err, "refdata: query concentration adjustments")
	}
	defer rows.Close()

	for rows.Next() {
		var b Band
		if err := rows.Scan(&b.Min, &b.Delta); err != nil {
			return eris.Wrap(err, "refdata: scan concentration adjustments")
		}
		snap.ConcentrationBands = append(snap.ConcentrationBands, b)
	}
	return eris.Wrap(rows.Err(), "refdata: iterate concentration adjustments")
}

func (p *PostgresProvider) loadDealSizeBands(ctx context.Context, snap *Snapshot) error {
	rows, err := p.pool.Query(ctx,
		`SELECT ev_min_eur, size_score FROM constant_deal_size_scores ORDER BY ev_min_eur ASC`)
	if err != nil {
		return eris.Wrap(err, "refdata: query deal size scores")
	}
	defer rows.Close()

	for rows.Next() {
		var b ScoreBand
		if err := rows.Scan(&b.MinEV, &b.Score); err != nil {
			return eris.Wrap(err, "refdata: scan deal size scores")
		}
		snap.DealSizeBands = append(snap.DealSizeBands, b)
	}
	return eris.Wrap(rows.Err(), "refdata: iterate deal size scores")
}
