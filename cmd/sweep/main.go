// Command sweep batch-runs the marginal-child analysis across states and
// marital statuses and writes the rows to CSV, with optional per-child-count
// summary statistics and a PNG chart per combination.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/benefits-data/marginal.report/internal/chart"
	"github.com/benefits-data/marginal.report/internal/config"
	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/engine/local"
	"github.com/benefits-data/marginal.report/internal/engine/policyapi"
	"github.com/benefits-data/marginal.report/internal/household"
	"github.com/benefits-data/marginal.report/internal/httputil"
	"github.com/benefits-data/marginal.report/internal/money"
	"github.com/benefits-data/marginal.report/internal/sweep"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// parseStates expands the -states flag into validated state codes. "all"
// selects every supported jurisdiction.
func parseStates(s string) ([]string, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		codes := make([]string, len(household.States))
		for i, st := range household.States {
			codes[i] = st.Code
		}
		return codes, nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code == "" {
			continue
		}
		if !household.ValidStateCode(code) {
			return nil, fmt.Errorf("unknown state code %q", code)
		}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no states selected")
	}
	return out, nil
}

// parseMaritalStatuses validates the -marital flag values.
func parseMaritalStatuses(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		status := strings.ToLower(strings.TrimSpace(p))
		if status == "" {
			continue
		}
		if status != household.MaritalSingle && status != household.MaritalMarried {
			return nil, fmt.Errorf("invalid marital status %q", status)
		}
		out = append(out, status)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no marital statuses selected")
	}
	return out, nil
}

// comboFilename derives a per-combination filename when the sweep covers
// more than one combination.
func comboFilename(base, state, marital string, multi bool) string {
	if !multi {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + state + "-" + marital + ext
}

func main() {
	statesFlag := flag.String("states", "TX", "Comma-separated state codes, or 'all'")
	maritalFlag := flag.String("marital", "single", "Comma-separated marital statuses (single,married)")
	engineFlag := flag.String("engine", "", "Calculation engine base URL (default: built-in local engine)")
	configPath := flag.String("config", "", "Path to a JSON config file")
	output := flag.String("output", "", "Output CSV filename (defaults to marginal-<timestamp>.csv)")
	plotFile := flag.String("plot", "", "PNG chart filename (one chart per combination; empty disables)")
	noSummary := flag.Bool("no-summary", false, "Skip the per-child-count summary CSV")

	incomeMin := flag.Float64("income-min", -1, "Sweep income minimum (negative: config default)")
	incomeMax := flag.Float64("income-max", -1, "Sweep income maximum (negative: config default)")
	incomeStep := flag.Float64("income-step", -1, "Sweep income step (negative: config default)")
	maxChildren := flag.Int("max-children", -1, "Highest child count to evaluate (negative: config default)")
	spouseIncome := flag.Float64("spouse-income", 0, "Spouse employment income for married combinations")
	year := flag.Int("year", 0, "Simulation year (0: config default)")
	includeHealth := flag.Bool("include-health", false, "Use the health-inclusive net income variable")
	timeout := flag.Duration("timeout", 0, "Per-combination timeout (0: config default)")

	flag.Parse()

	cfg := config.EmptyAppConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	states, err := parseStates(*statesFlag)
	if err != nil {
		log.Fatalf("Invalid -states: %v", err)
	}
	statuses, err := parseMaritalStatuses(*maritalFlag)
	if err != nil {
		log.Fatalf("Invalid -marital: %v", err)
	}

	if *incomeMin < 0 {
		*incomeMin = cfg.GetDefaultIncomeMin()
	}
	if *incomeMax < 0 {
		*incomeMax = cfg.GetDefaultIncomeMax()
	}
	if *incomeStep < 0 {
		*incomeStep = cfg.GetDefaultIncomeStep()
	}
	if *maxChildren < 0 {
		*maxChildren = cfg.GetDefaultMaxChildren()
	}
	runTimeout := *timeout
	if runTimeout <= 0 {
		runTimeout = cfg.GetRequestTimeout()
	}

	var eng engine.Engine
	if *engineFlag != "" {
		client := httputil.NewStandardClient(&http.Client{Timeout: cfg.GetEngineTimeout()})
		eng = policyapi.New(*engineFlag, client)
		log.Printf("Using calculation engine at %s", *engineFlag)
	} else {
		eng = local.New()
		log.Printf("Using built-in local engine")
	}

	pipeline := sweep.New(eng, sweep.Options{
		AgePolicy: cfg.GetAgePolicy(),
		ChildCap:  cfg.GetMaxChildrenCap(),
		Timeout:   runTimeout,
		Year:      cfg.GetSimulationYear(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prepare output files
	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("marginal-%s.csv", time.Now().Format("20060102-150405"))
	}

	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Could not create output file %s: %v", filename, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"state", "marital_status", "num_children", "income", "marginal_benefit", "net_income"})

	var sw *csv.Writer
	summaryFilename := strings.TrimSuffix(filename, ".csv") + "-summary.csv"
	if !*noSummary {
		fs, err := os.Create(summaryFilename)
		if err != nil {
			log.Fatalf("Could not create summary file %s: %v", summaryFilename, err)
		}
		defer fs.Close()
		sw = csv.NewWriter(fs)
		defer sw.Flush()
		sw.Write([]string{"state", "marital_status", "num_children", "points",
			"mean_marginal", "stddev_marginal", "min_marginal", "max_marginal"})
	}

	totalCombos := len(states) * len(statuses)
	multi := totalCombos > 1
	log.Printf("Sweeping %d combinations (%d states x %d marital statuses), incomes %s..%s step %s, children 1..%d",
		totalCombos, len(states), len(statuses),
		money.FormatUSD(*incomeMin), money.FormatUSD(*incomeMax), money.FormatUSD(*incomeStep), *maxChildren)

	comboNum := 0
	for _, state := range states {
		for _, marital := range statuses {
			comboNum++
			log.Printf("\n=== Combination %d/%d: state=%s marital=%s ===", comboNum, totalCombos, state, marital)

			params := &household.Params{
				MaritalStatus:         marital,
				State:                 state,
				IncomeMin:             floatPtr(*incomeMin),
				IncomeMax:             floatPtr(*incomeMax),
				IncomeStep:            floatPtr(*incomeStep),
				MaxChildren:           intPtr(*maxChildren),
				IncludeHealthBenefits: *includeHealth,
			}
			if marital == household.MaritalMarried && *spouseIncome > 0 {
				params.SpouseIncome = *spouseIncome
			}
			if *year > 0 {
				params.Year = intPtr(*year)
			}

			rows, info, err := pipeline.RunMarginal(ctx, params)
			if err != nil {
				if ctx.Err() != nil {
					log.Fatalf("Sweep cancelled: %v", err)
				}
				log.Printf("ERROR: %s/%s failed: %v", state, marital, err)
				continue
			}
			log.Printf("Run %s: %d rows (%d scenarios, %d points, %s)",
				info.ID, len(rows), info.Scenarios, info.Points, info.Elapsed)

			for _, row := range rows {
				w.Write([]string{
					state,
					marital,
					fmt.Sprintf("%d", row.NumChildren),
					fmt.Sprintf("%.2f", row.Income),
					fmt.Sprintf("%.2f", row.MarginalBenefit),
					fmt.Sprintf("%.2f", row.NetIncome),
				})
			}
			w.Flush()

			if sw != nil {
				for _, s := range sweep.Summarize(rows) {
					sw.Write([]string{
						state,
						marital,
						fmt.Sprintf("%d", s.NumChildren),
						fmt.Sprintf("%d", s.Points),
						fmt.Sprintf("%.2f", s.MeanMarginal),
						fmt.Sprintf("%.2f", s.StdDevMarginal),
						fmt.Sprintf("%.2f", s.MinMarginal),
						fmt.Sprintf("%.2f", s.MaxMarginal),
					})
				}
				sw.Flush()
			}

			if *plotFile != "" {
				name := comboFilename(*plotFile, state, marital, multi)
				title := fmt.Sprintf("Marginal benefit of an additional child (%s, %s)", marital, state)
				if err := chart.MarginalPNG(name, title, rows); err != nil {
					log.Printf("WARNING: Could not write chart %s: %v", name, err)
				} else {
					log.Printf("Chart: %s", name)
				}
			}
		}
	}

	log.Printf("\nSweep complete!")
	log.Printf("Rows: %s", filename)
	if sw != nil {
		log.Printf("Summary: %s", summaryFilename)
	}
}
