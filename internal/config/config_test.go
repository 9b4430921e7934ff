package config

import (
	"testing"
	"time"
)

func TestParseTierPrices(t *testing.T) {
	prices, err := ParseTierPrices("day=15000, week=80000,month=250000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(prices) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(prices))
	}
	if prices["day"] != 15_000 || prices["week"] != 80_000 || prices["month"] != 250_000 {
		t.Fatalf("unexpected prices: %v", prices)
	}
}

func TestParseTierPricesRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"day",
		"day=abc",
		"day=0",
		"day=-500",
		"day=100,day=200",
	}
	for _, spec := range cases {
		if _, err := ParseTierPrices(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.IntentTTL != 15*time.Minute {
		t.Fatalf("expected 15m intent TTL, got %v", cfg.IntentTTL)
	}
	if cfg.SweepSchedule != "@every 10m" {
		t.Fatalf("unexpected sweep schedule %q", cfg.SweepSchedule)
	}
	if !cfg.StrictAmount {
		t.Fatal("strict amount must default on")
	}
	if cfg.SuccessStatus != "success" {
		t.Fatalf("unexpected success sentinel %q", cfg.SuccessStatus)
	}
	if cfg.TierPrices["day"] != 15_000 {
		t.Fatalf("unexpected default day price %d", cfg.TierPrices["day"])
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRequiresStoresOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL in production")
	}
}

func TestLoadStrictAmountOverride(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("WEBHOOK_STRICT_AMOUNT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StrictAmount {
		t.Fatal("expected strict amount off")
	}
}
