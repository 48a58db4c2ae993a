package strategy

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "reversal lookback too short",
			mutate:  func(c *Config) { c.Reversal.LookbackBars = 1 },
			wantErr: "lookback_bars",
		},
		{
			name:    "reversal negative prior decline",
			mutate:  func(c *Config) { c.Reversal.PriorDeclinePct = -0.01 },
			wantErr: "prior_decline_pct",
		},
		{
			name:    "reversal zero body ratio",
			mutate:  func(c *Config) { c.Reversal.SmallBodyRatio = 0 },
			wantErr: "small_body_ratio",
		},
		{
			name:    "reversal shadow ratio above 1",
			mutate:  func(c *Config) { c.Reversal.MaxUpperShadowRatio = 1.2 },
			wantErr: "max_upper_shadow_ratio",
		},
		{
			name:    "volume breakout zero decline",
			mutate:  func(c *Config) { c.VolumeBreakout.DeclinePct = 0 },
			wantErr: "volume_breakout",
		},
		{
			name:    "volume breakout negative tolerance",
			mutate:  func(c *Config) { c.VolumeBreakout.LimitUpTolerance = -0.001 },
			wantErr: "limit_up_tolerance",
		},
		{
			name:    "volume breakout zero expand ratio",
			mutate:  func(c *Config) { c.VolumeBreakout.VolumeExpandRatio = 0 },
			wantErr: "volume_expand_ratio",
		},
		{
			name:    "volume breakout window below stage minimums",
			mutate:  func(c *Config) { c.VolumeBreakout.WindowBars = 10 },
			wantErr: "window_bars",
		},
		{
			name:    "shrink breakout zero volume floor",
			mutate:  func(c *Config) { c.ShrinkBreakout.BreakoutVolumeFloor = 0 },
			wantErr: "volume ratios",
		},
		{
			name:    "shrink breakout MA periods inverted",
			mutate:  func(c *Config) { c.ShrinkBreakout.VolumeMAShort = 10; c.ShrinkBreakout.VolumeMALong = 5 },
			wantErr: "volume_ma_short",
		},
		{
			name:    "shrink breakout window below stage minimums",
			mutate:  func(c *Config) { c.ShrinkBreakout.WindowBars = 12 },
			wantErr: "window_bars",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
