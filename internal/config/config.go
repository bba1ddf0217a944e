package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	vollib "github.com/joshi-prasad/go_vollib"
)

// Case is one option scenario. Maturity is given either in calendar days or
// in years; Days wins when both are set.
type Case struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"` // call, put
	Strike     float64 `yaml:"strike"`
	Days       float64 `yaml:"days"`
	Years      float64 `yaml:"years"`
	Spot       float64 `yaml:"spot"`
	Rate       float64 `yaml:"rate"`
	Dividend   float64 `yaml:"dividend"`
	Volatility float64 `yaml:"volatility"`
}

// TimingConfig controls the single-threaded timing baseline.
type TimingConfig struct {
	Iterations int `yaml:"iterations"`
}

// BatchConfig controls concurrent pricing of the scenario grid.
type BatchConfig struct {
	Workers int `yaml:"workers"`
	// Copies of every case priced per run.
	Repeat int `yaml:"repeat"`
}

type Config struct {
	Pricing    []Case       `yaml:"pricing"`
	ImpliedVol []Case       `yaml:"implied_vol"`
	Timing     TimingConfig `yaml:"timing"`
	Batch      BatchConfig  `yaml:"batch"`
}

// Default returns the baseline scenarios.
func Default() *Config {
	return &Config{
		Pricing: []Case{
			{Name: "call_otm", Type: "call", Strike: 110, Days: 20, Spot: 100, Rate: 0.05, Dividend: 0.05, Volatility: 0.2},
			{Name: "call_itm", Type: "call", Strike: 90, Days: 20, Spot: 100, Rate: 0.05, Dividend: 0.05, Volatility: 0.2},
			{Name: "put_otm", Type: "put", Strike: 90, Days: 20, Spot: 100, Rate: 0.05, Dividend: 0.05, Volatility: 0.2},
			{Name: "put_itm", Type: "put", Strike: 110, Days: 20, Spot: 100, Rate: 0.05, Dividend: 0.05, Volatility: 0.2},
			{Name: "branch_cut", Type: "put", Strike: 100, Years: 1, Spot: 100, Volatility: 0.421},
		},
		ImpliedVol: []Case{
			{Name: "put_otm", Type: "put", Strike: 100, Days: 45, Spot: 90, Rate: 0.03, Dividend: 0.02, Volatility: 0.25},
			{Name: "call_itm", Type: "call", Strike: 100, Days: 60, Spot: 120, Rate: 0.01, Volatility: 0.15},
			{Name: "put_itm", Type: "put", Strike: 100, Days: 60, Spot: 80, Rate: 0.04, Dividend: 0.03, Volatility: 0.18},
			{Name: "call_atm", Type: "call", Strike: 100, Days: 90, Spot: 100, Rate: 0.05, Dividend: 0.04, Volatility: 0.20},
			{Name: "put_atm", Type: "put", Strike: 100, Days: 120, Spot: 100, Rate: 0.06, Dividend: 0.01, Volatility: 0.22},
		},
		Timing: TimingConfig{
			Iterations: getEnvInt("VOLLIB_TIMING_ITERATIONS", 1000000),
		},
		Batch: BatchConfig{
			Workers: getEnvInt("VOLLIB_BATCH_WORKERS", 4),
			Repeat:  getEnvInt("VOLLIB_BATCH_REPEAT", 10000),
		},
	}
}

// Load reads a YAML scenario file on top of Default. Sections missing from
// the file keep their defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Pricing) > 0 {
		cfg.Pricing = file.Pricing
	}
	if len(file.ImpliedVol) > 0 {
		cfg.ImpliedVol = file.ImpliedVol
	}
	if file.Timing.Iterations > 0 {
		cfg.Timing.Iterations = file.Timing.Iterations
	}
	if file.Batch.Workers > 0 {
		cfg.Batch.Workers = file.Batch.Workers
	}
	if file.Batch.Repeat > 0 {
		cfg.Batch.Repeat = file.Batch.Repeat
	}
	for _, c := range append(append([]Case{}, cfg.Pricing...), cfg.ImpliedVol...) {
		if _, _, err := c.Contract(); err != nil {
			return nil, fmt.Errorf("%s: case %q: %w", path, c.Name, err)
		}
	}
	return cfg, nil
}

// Contract converts the case into library inputs. Numeric ranges are left
// to the pricing functions.
func (c Case) Contract() (vollib.VanillaOption, vollib.MarketData, error) {
	var optionType vollib.OptionType
	switch strings.ToLower(c.Type) {
	case "call", "c":
		optionType = vollib.Call
	case "put", "p":
		optionType = vollib.Put
	default:
		return vollib.VanillaOption{}, vollib.MarketData{}, fmt.Errorf("unknown option type %q", c.Type)
	}
	years := c.Years
	if c.Days != 0 {
		years = vollib.DaysToYears(c.Days)
	}
	option := vollib.NewVanillaOption(vollib.European, optionType, c.Strike, years)
	market := vollib.NewMarketData(c.Spot, c.Rate, c.Dividend)
	return option, market, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
