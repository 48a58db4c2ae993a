package strategy

import "fmt"

// ReversalConfig holds the thresholds for the three-day reversal detector.
type ReversalConfig struct {
	LookbackBars        int     `yaml:"lookback_bars"`          // prior-trend prefix length
	PriorDeclinePct     float64 `yaml:"prior_decline_pct"`      // min net decline over the prefix, fraction
	SmallBodyRatio      float64 `yaml:"small_body_ratio"`       // max b1 body size relative to open
	LargeDeclinePct     float64 `yaml:"large_decline_pct"`      // min b2 decline relative to open
	MaxUpperShadowRatio float64 `yaml:"max_upper_shadow_ratio"` // max upper wick share of bar range
}

// VolumeBreakoutConfig holds the thresholds for the volume breakout detector.
type VolumeBreakoutConfig struct {
	WindowBars           int     `yaml:"window_bars"`
	MinDeclineBars       int     `yaml:"min_decline_bars"`
	DeclinePct           float64 `yaml:"decline_pct"`
	VolatilityRatio      float64 `yaml:"volatility_ratio"` // per-bar (high-low)/close ceiling in consolidation
	MinConsolidationBars int     `yaml:"min_consolidation_bars"`
	LimitUpPct           float64 `yaml:"limit_up_pct"`         // main board daily cap
	LimitUpChiNextPct    float64 `yaml:"limit_up_chinext_pct"` // ChiNext (3xxxxx) daily cap
	LimitUpTolerance     float64 `yaml:"limit_up_tolerance"`
	LimitUpBodyRatio     float64 `yaml:"limit_up_body_ratio"` // excludes one-tick boards
	MinPullbackBars      int     `yaml:"min_pullback_bars"`
	TrailingVolumeBars   int     `yaml:"trailing_volume_bars"`
	VolumeExpandRatio    float64 `yaml:"volume_expand_ratio"`
}

// ShrinkBreakoutConfig holds the thresholds for the shrink-volume breakout detector.
type ShrinkBreakoutConfig struct {
	WindowBars           int     `yaml:"window_bars"`
	MinDeclineBars       int     `yaml:"min_decline_bars"`
	DeclinePct           float64 `yaml:"decline_pct"`
	VolatilityRatio      float64 `yaml:"volatility_ratio"`
	MinConsolidationBars int     `yaml:"min_consolidation_bars"`
	LimitUpPct           float64 `yaml:"limit_up_pct"`
	LimitUpChiNextPct    float64 `yaml:"limit_up_chinext_pct"`
	LimitUpTolerance     float64 `yaml:"limit_up_tolerance"`
	MinSecondConsolBars  int     `yaml:"min_second_consol_bars"`
	TrailingVolumeBars   int     `yaml:"trailing_volume_bars"`
	VolumeShrinkRatio    float64 `yaml:"volume_shrink_ratio"`   // per-bar ceiling during the second consolidation
	BreakoutVolumeFloor  float64 `yaml:"breakout_volume_floor"` // vs the shrunk consolidation baseline
	VolumeMAShort        int     `yaml:"volume_ma_short"`
	VolumeMALong         int     `yaml:"volume_ma_long"`
}

// Config is the full pattern configuration supplied once per run.
// Detectors are pure functions of (BarSeries, Config).
type Config struct {
	Reversal       ReversalConfig       `yaml:"reversal"`
	VolumeBreakout VolumeBreakoutConfig `yaml:"volume_breakout"`
	ShrinkBreakout ShrinkBreakoutConfig `yaml:"shrink_breakout"`
}

// DefaultConfig returns the calibrated default thresholds.
func DefaultConfig() *Config {
	return &Config{
		Reversal: ReversalConfig{
			LookbackBars:        5,
			PriorDeclinePct:     0,
			SmallBodyRatio:      0.03,
			LargeDeclinePct:     0.03,
			MaxUpperShadowRatio: 0.30,
		},
		VolumeBreakout: VolumeBreakoutConfig{
			WindowBars:           120,
			MinDeclineBars:       5,
			DeclinePct:           0.08,
			VolatilityRatio:      0.05,
			MinConsolidationBars: 6,
			LimitUpPct:           0.10,
			LimitUpChiNextPct:    0.20,
			LimitUpTolerance:     0.005,
			LimitUpBodyRatio:     0.6,
			MinPullbackBars:      3,
			TrailingVolumeBars:   5,
			VolumeExpandRatio:    1.5,
		},
		ShrinkBreakout: ShrinkBreakoutConfig{
			WindowBars:           120,
			MinDeclineBars:       5,
			DeclinePct:           0.08,
			VolatilityRatio:      0.05,
			MinConsolidationBars: 6,
			LimitUpPct:           0.10,
			LimitUpChiNextPct:    0.20,
			LimitUpTolerance:     0.005,
			MinSecondConsolBars:  5,
			TrailingVolumeBars:   10,
			VolumeShrinkRatio:    1.0,
			BreakoutVolumeFloor:  1.0,
			VolumeMAShort:        5,
			VolumeMALong:         10,
		},
	}
}

// Validate checks threshold sanity. Called once at run start, before any fetch.
func (c *Config) Validate() error {
	r := c.Reversal
	if r.LookbackBars < 2 {
		return fmt.Errorf("reversal.lookback_bars must be >= 2, got %d", r.LookbackBars)
	}
	if r.PriorDeclinePct < 0 {
		return fmt.Errorf("reversal.prior_decline_pct must be non-negative, got %v", r.PriorDeclinePct)
	}
	if r.SmallBodyRatio <= 0 {
		return fmt.Errorf("reversal.small_body_ratio must be positive, got %v", r.SmallBodyRatio)
	}
	if r.LargeDeclinePct <= 0 {
		return fmt.Errorf("reversal.large_decline_pct must be positive, got %v", r.LargeDeclinePct)
	}
	if r.MaxUpperShadowRatio <= 0 || r.MaxUpperShadowRatio > 1 {
		return fmt.Errorf("reversal.max_upper_shadow_ratio must be in (0,1], got %v", r.MaxUpperShadowRatio)
	}

	v := c.VolumeBreakout
	if v.DeclinePct <= 0 || v.VolatilityRatio <= 0 || v.LimitUpPct <= 0 || v.LimitUpChiNextPct <= 0 {
		return fmt.Errorf("volume_breakout: ratios must be positive")
	}
	if v.LimitUpTolerance < 0 {
		return fmt.Errorf("volume_breakout.limit_up_tolerance must be non-negative, got %v", v.LimitUpTolerance)
	}
	if v.VolumeExpandRatio <= 0 {
		return fmt.Errorf("volume_breakout.volume_expand_ratio must be positive, got %v", v.VolumeExpandRatio)
	}
	if v.MinDeclineBars < 2 || v.MinConsolidationBars < 1 || v.MinPullbackBars < 1 || v.TrailingVolumeBars < 1 {
		return fmt.Errorf("volume_breakout: stage minimums must be positive")
	}
	if min := v.MinDeclineBars + v.MinConsolidationBars + 1 + v.MinPullbackBars + 1; v.WindowBars < min {
		return fmt.Errorf("volume_breakout.window_bars %d too small for stage minimums (need >= %d)", v.WindowBars, min)
	}

	s := c.ShrinkBreakout
	if s.DeclinePct <= 0 || s.VolatilityRatio <= 0 || s.LimitUpPct <= 0 || s.LimitUpChiNextPct <= 0 {
		return fmt.Errorf("shrink_breakout: ratios must be positive")
	}
	if s.LimitUpTolerance < 0 {
		return fmt.Errorf("shrink_breakout.limit_up_tolerance must be non-negative, got %v", s.LimitUpTolerance)
	}
	if s.VolumeShrinkRatio <= 0 || s.BreakoutVolumeFloor <= 0 {
		return fmt.Errorf("shrink_breakout: volume ratios must be positive")
	}
	if s.MinDeclineBars < 2 || s.MinConsolidationBars < 1 || s.MinSecondConsolBars < 1 || s.TrailingVolumeBars < 1 {
		return fmt.Errorf("shrink_breakout: stage minimums must be positive")
	}
	if s.VolumeMAShort < 1 || s.VolumeMALong <= s.VolumeMAShort {
		return fmt.Errorf("shrink_breakout: volume_ma_short %d must be >= 1 and < volume_ma_long %d", s.VolumeMAShort, s.VolumeMALong)
	}
	if min := s.MinDeclineBars + s.MinConsolidationBars + 1 + s.MinSecondConsolBars + 1; s.WindowBars < min {
		return fmt.Errorf("shrink_breakout.window_bars %d too small for stage minimums (need >= %d)", s.WindowBars, min)
	}
	return nil
}
