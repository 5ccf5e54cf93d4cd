package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.TickDecimals != 2 {
		t.Errorf("TickDecimals = %d, want 2", cfg.TickDecimals)
	}
	if cfg.DisposalMethod != "fifo" {
		t.Errorf("DisposalMethod = %q, want fifo", cfg.DisposalMethod)
	}
	if cfg.SimSeed != 42 {
		t.Errorf("SimSeed = %d, want 42", cfg.SimSeed)
	}
	if cfg.SimTicks != 50 {
		t.Errorf("SimTicks = %d, want 50", cfg.SimTicks)
	}
	if cfg.SimInvestors != 8 {
		t.Errorf("SimInvestors = %d, want 8", cfg.SimInvestors)
	}
	if !cfg.SimOpeningPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("SimOpeningPrice = %s, want 5.00", cfg.SimOpeningPrice)
	}
	if cfg.SimInitialQuantity != 10000 {
		t.Errorf("SimInitialQuantity = %d, want 10000", cfg.SimInitialQuantity)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TICK_DECIMALS", "4")
	t.Setenv("DISPOSAL_METHOD", "lifo")
	t.Setenv("SIM_SEED", "7")
	t.Setenv("SIM_OPENING_PRICE", "12.3456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.TickDecimals != 4 {
		t.Errorf("TickDecimals = %d, want 4", cfg.TickDecimals)
	}
	if cfg.DisposalMethod != "lifo" {
		t.Errorf("DisposalMethod = %q, want lifo", cfg.DisposalMethod)
	}
	if cfg.SimSeed != 7 {
		t.Errorf("SimSeed = %d, want 7", cfg.SimSeed)
	}
	if !cfg.SimOpeningPrice.Equal(decimal.RequireFromString("12.3456")) {
		t.Errorf("SimOpeningPrice = %s, want 12.3456", cfg.SimOpeningPrice)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"tick decimals not a number", "TICK_DECIMALS", "two"},
		{"tick decimals out of range", "TICK_DECIMALS", "9"},
		{"negative tick decimals", "TICK_DECIMALS", "-1"},
		{"unknown disposal method", "DISPOSAL_METHOD", "hifo"},
		{"zero ticks", "SIM_TICKS", "0"},
		{"zero investors", "SIM_INVESTORS", "0"},
		{"non-positive opening price", "SIM_OPENING_PRICE", "0"},
		{"garbage opening price", "SIM_OPENING_PRICE", "cheap"},
		{"negative initial quantity", "SIM_INITIAL_QUANTITY", "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q succeeded, want error", tc.key, tc.value)
			}
		})
	}
}
