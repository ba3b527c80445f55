// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package synthetic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/tabular"
	"github.com/tomtom215/lumen/internal/validation"
)

// Anchor columns.
const (
	ColTraffic0102 = "traffic_01_02"
	ColTraffic0203 = "traffic_02_03"
	ColTraffic0304 = "traffic_03_04"
	ColParkInGrid  = "park_in_grid"
)

// Existing illuminance tiers assigned by commercial index quantile.
const (
	TierHighLx = 25.0
	TierMidLx  = 15.0
	TierLowLx  = 10.0

	lowQuantile  = 0.30
	highQuantile = 0.70

	rankEpsilon = 1e-9
	cancelCheck = 4096
)

// ErrNoAnchors is returned when generation is asked to sample from nothing.
var ErrNoAnchors = errors.New("at least one anchor row is required")

// AnchorColumns must be present in an anchor table.
var AnchorColumns = []string{ColTraffic0102, ColTraffic0203, ColTraffic0304, recommend.KeyCCTVDensity, ColParkInGrid}

// Config controls sampling.
type Config struct {
	Seed             uint64    `koanf:"seed" json:"seed"`
	Rows             int       `koanf:"rows" json:"rows" validate:"min=1,max=10000000"`
	TrafficJitter    float64   `koanf:"traffic_jitter" json:"traffic_jitter" validate:"gte=0"`
	CCTVJitter       float64   `koanf:"cctv_jitter" json:"cctv_jitter" validate:"gte=0"`
	SlotAlpha        []float64 `koanf:"slot_alpha" json:"slot_alpha" validate:"len=3,dive,gt=0"`
	CommercialNoise  float64   `koanf:"commercial_noise" json:"commercial_noise" validate:"gte=0"`
	ResidentialNoise float64   `koanf:"residential_noise" json:"residential_noise" validate:"gte=0"`
}

// DefaultConfig returns the sampling defaults.
func DefaultConfig() Config {
	return Config{
		Seed:             42,
		Rows:             50000,
		TrafficJitter:    0.03,
		CCTVJitter:       0.03,
		SlotAlpha:        []float64{2.2, 2.0, 1.8},
		CommercialNoise:  0.08,
		ResidentialNoise: 0.10,
	}
}

// Anchor is one observed grid cell used as a bootstrap source.
type Anchor struct {
	Traffic     [3]float64
	CCTVDensity float64
	ParkInGrid  bool
}

// TrafficSum is the total traffic over the three night hours.
func (a Anchor) TrafficSum() float64 {
	return a.Traffic[0] + a.Traffic[1] + a.Traffic[2]
}

// Row is one synthetic grid cell. RecommendedLx and DeltaPercent are set by
// Label.
type Row struct {
	GridID             string     `json:"grid_id"`
	NightTraffic       float64    `json:"night_traffic"`
	CCTVDensity        float64    `json:"cctv_density"`
	Traffic            [3]float64 `json:"traffic"`
	ParkWithin         bool       `json:"park_within"`
	CommercialDensity  float64    `json:"commercial_density"`
	ResidentialDensity float64    `json:"residential_density"`
	ExistingLx         float64    `json:"existing_lx"`
	RecommendedLx      float64    `json:"recommended_lx"`
	DeltaPercent       float64    `json:"delta_percent"`
}

// Features returns the feature vector of the row.
func (r Row) Features() recommend.FeatureVector {
	return recommend.NewFeatureVector(r.NightTraffic, r.CCTVDensity, r.ParkWithin, r.CommercialDensity, r.ResidentialDensity, r.ExistingLx)
}

// Generator bootstraps synthetic cells from anchors.
type Generator struct {
	cfg    Config
	logger zerolog.Logger
}

// NewGenerator validates cfg and returns a generator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenerator(cfg Config, logger zerolog.Logger) (*Generator, error) {
	if verr := validation.ValidateStruct(&cfg); verr != nil {
		return nil, verr
	}
	return &Generator{
		cfg:    cfg,
		logger: logger.With().Str("component", "synthetic").Logger(),
	}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// ReadAnchors reads anchor cells from a delimited table. Missing traffic and
// CCTV values count as 0, a missing park flag as false.
func ReadAnchors(r io.Reader) ([]Anchor, error) {
	table, err := tabular.Read(r)
	if err != nil {
		return nil, err
	}
	if missing := table.Missing(AnchorColumns...); len(missing) > 0 {
		return nil, &recommend.MissingFeatureError{Keys: missing}
	}

	columns := make([][]float64, len(AnchorColumns))
	for i, name := range AnchorColumns {
		if columns[i], err = table.Floats(name); err != nil {
			return nil, err
		}
	}

	anchors := make([]Anchor, table.Len())
	for i := range anchors {
		anchors[i] = Anchor{
			Traffic:     [3]float64{zeroNaN(columns[0][i]), zeroNaN(columns[1][i]), zeroNaN(columns[2][i])},
			CCTVDensity: recommend.Clamp01(zeroNaN(columns[3][i])),
			ParkInGrid:  zeroNaN(columns[4][i]) >= 1,
		}
	}
	return anchors, nil
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Generate draws cfg.Rows synthetic cells. The output depends only on the
// seed and the anchors.
func (g *Generator) Generate(ctx context.Context, anchors []Anchor) ([]Row, error) {
	if len(anchors) == 0 {
		return nil, ErrNoAnchors
	}
	start := time.Now()
	n := g.cfg.Rows
	src := rand.NewPCG(g.cfg.Seed, g.cfg.Seed)
	rng := rand.New(src)

	sums := make([]float64, len(anchors))
	for i, a := range anchors {
		sums[i] = a.TrafficSum()
	}
	_, variance := stat.PopMeanVariance(sums, nil)
	trafficNoise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance) * g.cfg.TrafficJitter, Src: src}
	cctvNoise := distuv.Normal{Mu: 0, Sigma: g.cfg.CCTVJitter, Src: src}
	comNoise := distuv.Normal{Mu: 0, Sigma: g.cfg.CommercialNoise, Src: src}
	resNoise := distuv.Normal{Mu: 0, Sigma: g.cfg.ResidentialNoise, Src: src}
	slots := distmv.NewDirichlet(g.cfg.SlotAlpha, src)

	rows := make([]Row, n)
	traffic := make([]float64, n)
	for i := range rows {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a := anchors[rng.IntN(len(anchors))]
		traffic[i] = math.Max(0, a.TrafficSum()+trafficNoise.Rand())
		rows[i].CCTVDensity = recommend.Clamp01(a.CCTVDensity + cctvNoise.Rand())
		rows[i].ParkWithin = a.ParkInGrid
	}

	weights := make([]float64, len(g.cfg.SlotAlpha))
	for i := range rows {
		slots.Rand(weights)
		for s := range rows[i].Traffic {
			rows[i].Traffic[s] = traffic[i] * weights[s]
		}
	}

	night := Rank01(traffic)
	index := make([]float64, n)
	for i := range rows {
		r := &rows[i]
		r.GridID = fmt.Sprintf("%06d", i+1)
		r.NightTraffic = night[i]
		r.CommercialDensity = recommend.Clamp01(0.75*r.NightTraffic + 0.20*r.CCTVDensity + comNoise.Rand())
		r.ResidentialDensity = recommend.Clamp01(0.70*(1-r.CommercialDensity) + 0.30*r.ParkFlag() + resNoise.Rand())
		index[i] = CommercialIndex(r.CommercialDensity, r.ResidentialDensity, r.NightTraffic)
	}

	q30 := tabular.Quantile(index, lowQuantile)
	q70 := tabular.Quantile(index, highQuantile)
	for i := range rows {
		rows[i].ExistingLx = Tier(index[i], q30, q70)
	}

	g.logger.Info().
		Int("rows", n).
		Int("anchors", len(anchors)).
		Uint64("seed", g.cfg.Seed).
		Dur("duration", time.Since(start)).
		Msg("synthetic cells generated")

	return rows, nil
}

// ParkFlag is the park indicator as 0 or 1.
func (r Row) ParkFlag() float64 {
	if r.ParkWithin {
		return 1
	}
	return 0
}

// CommercialIndex weighs commercial activity against residential calm.
func CommercialIndex(commercial, residential, nightTraffic float64) float64 {
	return 0.6*commercial - 0.4*residential + 0.2*nightTraffic
}

// Tier maps a commercial index to an existing illuminance.
func Tier(index, q30, q70 float64) float64 {
	switch {
	case index >= q70:
		return TierHighLx
	case index <= q30:
		return TierLowLx
	default:
		return TierMidLx
	}
}

// Rank01 maps values to average-rank percentiles (r-1)/(n-1+1e-9), where
// ties share the mean of their ranks.
func Rank01(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[order[k]] = (rank - 1) / (float64(n-1) + rankEpsilon)
		}
		i = j + 1
	}
	return out
}

// Label scores every row with scorer and the policy clamp, filling
// RecommendedLx and DeltaPercent.
func Label(rows []Row, scorer recommend.Scorer, policy recommend.Policy) error {
	for i := range rows {
		r := &rows[i]
		raw, err := scorer.Predict(r.Features())
		if err != nil {
			return &recommend.PredictionError{GridID: r.GridID, Scorer: scorer.Name(), Err: err}
		}
		r.RecommendedLx = policy.Clamp(raw, r.ExistingLx)
		r.DeltaPercent = recommend.RawDeltaPercent(r.RecommendedLx, r.ExistingLx)
	}
	return nil
}
