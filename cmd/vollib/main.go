// Command vollib prints the pricing, implied volatility and timing
// baselines of the library and prices a scenario grid concurrently.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	vollib "github.com/joshi-prasad/go_vollib"
	"github.com/joshi-prasad/go_vollib/internal/config"
)

var sections = []string{"pricing", "iv", "timing", "batch"}

// baselineRow is one line of the -csv export. Result is the rational price
// in the pricing section and the rational implied volatility in the iv
// section.
type baselineRow struct {
	Section    string  `csv:"section"`
	Name       string  `csv:"name"`
	Volatility float64 `csv:"volatility"`
	Price      float64 `csv:"price"`
	Result     float64 `csv:"result"`
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML scenario file; the built-in baselines are used when empty")
		selected   = flag.String("sections", "pricing,iv,timing", "comma separated sections to run: "+strings.Join(sections, ", "))
		iterations = flag.Int("n", 0, "timing iterations; overrides the scenario file")
		workers    = flag.Int("workers", 0, "batch pricing goroutines; overrides the scenario file")
		csvPath    = flag.String("csv", "", "write the pricing and iv baseline rows to this CSV file")
	)
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Errorf("Failed to load scenarios: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	if *iterations > 0 {
		cfg.Timing.Iterations = *iterations
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	var run []string
	for _, s := range strings.Split(*selected, ",") {
		s = strings.TrimSpace(s)
		if !slices.Contains(sections, s) {
			glog.Errorf("Unknown section %q", s)
			glog.Flush()
			os.Exit(2)
		}
		run = append(run, s)
	}

	var rows []*baselineRow
	for i, s := range run {
		if i > 0 {
			fmt.Println()
		}
		switch s {
		case "pricing":
			fmt.Println("== Pricing baseline ==")
			rows = append(rows, pricingBaseline(cfg.Pricing)...)
		case "iv":
			fmt.Println("== Implied volatility baseline (rational) ==")
			rows = append(rows, impliedVolBaseline(cfg.ImpliedVol)...)
		case "timing":
			fmt.Println("== Timing baseline ==")
			timingBaseline(cfg.Timing.Iterations)
		case "batch":
			fmt.Println("== Batch pricing ==")
			if err := batchPricing(context.Background(), cfg); err != nil {
				glog.Errorf("Batch pricing failed: %v", err)
			}
		}
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, rows); err != nil {
			glog.Errorf("Failed to write %s: %v", *csvPath, err)
			glog.Flush()
			os.Exit(1)
		}
		glog.Infof("Wrote %d rows to %s", len(rows), *csvPath)
	}
}

func writeCSV(path string, rows []*baselineRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pricingBaseline(cases []config.Case) []*baselineRow {
	var rows []*baselineRow
	for _, c := range cases {
		option, market, err := c.Contract()
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		price, err := vollib.Price(&option, &market, c.Volatility)
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		rational, err := vollib.RationalPrice(&option, &market, c.Volatility)
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		fmt.Printf("%s: price = %.10f, rational_price = %.10f\n", c.Name, price, rational)
		rows = append(rows, &baselineRow{"pricing", c.Name, c.Volatility, price, rational})
	}
	return rows
}

func impliedVolBaseline(cases []config.Case) []*baselineRow {
	var rows []*baselineRow
	for _, c := range cases {
		option, market, err := c.Contract()
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		price, err := vollib.Price(&option, &market, c.Volatility)
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		iv, err := vollib.RationalImpliedVol(price, &option, &market)
		if err != nil {
			glog.Errorf("%s: %v", c.Name, err)
			continue
		}
		fmt.Printf("%s: true_sigma = %.10f, rational_iv = %.10f\n", c.Name, c.Volatility, iv)
		rows = append(rows, &baselineRow{"iv", c.Name, c.Volatility, price, iv})
	}
	return rows
}

func timingBaseline(n int) {
	fmt.Printf("Measurements for N = %d iterations (single-threaded)\n", n)

	option := vollib.NewVanillaOption(vollib.European, vollib.Call, 100, 1)
	market := vollib.NewMarketData(100, 0.05, 0.01)
	const sigma = 0.2
	price, err := vollib.Price(&option, &market, sigma)
	if err != nil {
		glog.Errorf("Timing setup: %v", err)
		return
	}

	measure := func(name string, f func() (float64, error)) {
		var acc float64
		start := time.Now()
		for i := 0; i < n; i++ {
			v, err := f()
			if err != nil {
				glog.Errorf("%s: %v", name, err)
				return
			}
			acc += v
		}
		elapsed := time.Since(start)
		fmt.Printf("%-24s ~%.2f ns/op (acc=%.4f)\n", name+":", float64(elapsed.Nanoseconds())/float64(n), acc)
	}
	measure("Price", func() (float64, error) { return vollib.Price(&option, &market, sigma) })
	measure("RationalPrice", func() (float64, error) { return vollib.RationalPrice(&option, &market, sigma) })
	measure("RationalImpliedVol", func() (float64, error) { return vollib.RationalImpliedVol(price, &option, &market) })
	measure("ImpliedVol", func() (float64, error) { return vollib.ImpliedVol(price, &option, &market) })
	measure("ComputeGreeks", func() (float64, error) {
		g, err := vollib.ComputeGreeks(&option, &market, sigma)
		return g.Delta, err
	})
}

// batchPricing prices Repeat copies of every pricing case with the rational
// pricer, spread over Workers goroutines, and checks the results against the
// closed form.
func batchPricing(ctx context.Context, cfg *config.Config) error {
	type job struct {
		name   string
		option vollib.VanillaOption
		market vollib.MarketData
		sigma  float64
	}
	var jobs []job
	for _, c := range cfg.Pricing {
		option, market, err := c.Contract()
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		for i := 0; i < cfg.Batch.Repeat; i++ {
			jobs = append(jobs, job{c.Name, option, market, c.Volatility})
		}
	}

	if cfg.Batch.Workers < 1 {
		cfg.Batch.Workers = 1
	}
	results := make([]float64, len(jobs))
	chunk := (len(jobs) + cfg.Batch.Workers - 1) / cfg.Batch.Workers
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Workers)
	for lo := 0; lo < len(jobs); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(jobs) {
			hi = len(jobs)
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				j := &jobs[i]
				price, err := vollib.RationalPrice(&j.option, &j.market, j.sigma)
				if err != nil {
					return fmt.Errorf("%s: %w", j.name, err)
				}
				results[i] = price
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	var pricer vollib.Pricer = vollib.ClosedForm{}
	var worst float64
	for i := 0; i < len(jobs); i += cfg.Batch.Repeat {
		j := &jobs[i]
		want, err := pricer.Price(&j.option, &j.market, j.sigma)
		if err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
		worst = math.Max(worst, math.Abs(results[i]-want))
	}
	glog.Infof("Batch priced %d options with %d workers", len(jobs), cfg.Batch.Workers)
	fmt.Printf("%d options, %d workers: %v (%.2f ns/op), max |rational - closed form| = %.3g\n",
		len(jobs), cfg.Batch.Workers, elapsed, float64(elapsed.Nanoseconds())/float64(len(jobs)), worst)
	return nil
}
