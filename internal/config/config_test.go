package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	vollib "github.com/joshi-prasad/go_vollib"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := ioutil.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultBaselines(t *testing.T) {
	cfg := Default()
	if len(cfg.Pricing) != 5 || len(cfg.ImpliedVol) != 5 {
		t.Fatalf("got %d pricing and %d implied vol cases", len(cfg.Pricing), len(cfg.ImpliedVol))
	}
	if cfg.Pricing[4].Name != "branch_cut" || cfg.Pricing[4].Volatility != 0.421 {
		t.Errorf("branch cut case %+v", cfg.Pricing[4])
	}
}

func TestTimingIterationsEnvOverride(t *testing.T) {
	os.Setenv("VOLLIB_TIMING_ITERATIONS", "250")
	defer os.Unsetenv("VOLLIB_TIMING_ITERATIONS")

	if got := Default().Timing.Iterations; got != 250 {
		t.Errorf("iterations %d, want 250", got)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Pricing) != len(Default().Pricing) {
		t.Errorf("pricing cases %d", len(cfg.Pricing))
	}
}

func TestLoadOverridesSections(t *testing.T) {
	path := writeScenario(t, `
pricing:
  - name: far_put
    type: put
    strike: 40
    years: 0.02
    spot: 100
    rate: 0.01
    volatility: 0.25
batch:
  workers: 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Pricing) != 1 || cfg.Pricing[0].Name != "far_put" {
		t.Fatalf("pricing %+v", cfg.Pricing)
	}
	if len(cfg.ImpliedVol) != 5 {
		t.Errorf("implied vol cases should keep defaults, got %d", len(cfg.ImpliedVol))
	}
	if cfg.Batch.Workers != 8 || cfg.Batch.Repeat != Default().Batch.Repeat {
		t.Errorf("batch %+v", cfg.Batch)
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	path := writeScenario(t, `
implied_vol:
  - name: bad
    type: straddle
    strike: 100
    days: 30
    spot: 100
    volatility: 0.2
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown option type")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestCaseContract(t *testing.T) {
	option, market, err := Case{Type: "P", Strike: 95, Days: 365.25, Years: 3, Spot: 100, Rate: 0.02, Dividend: 0.01}.Contract()
	if err != nil {
		t.Fatal(err)
	}
	if option.Type != vollib.Put || option.Strike != 95 || option.TimeToMaturity != 1 {
		t.Errorf("option %+v", option)
	}
	if market.Spot != 100 || market.Rate != 0.02 || market.DividendYield != 0.01 {
		t.Errorf("market %+v", market)
	}
}
