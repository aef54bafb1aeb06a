package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"simbench/adapters/export"
	"simbench/adapters/postgres"
	"simbench/adapters/simulate"
	"simbench/adapters/snapshot"
	"simbench/app"
	"simbench/domain/core"
	"simbench/domain/study"
	"simbench/internal"
	"simbench/internal/config"
	"simbench/internal/profiling"
)

var logger = internal.DefaultLogger

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "simbench",
		Short: "Monte Carlo comparison of t-test, rank-sum and KS under non-normal data",
	}

	rootCmd.AddCommand(
		newRunCmd(cfg),
		newRatesCmd(cfg),
		newDescribeCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	var (
		replications int
		sizesSpec    string
		seed         uint64
		alpha        float64
		workers      int
		outDir       string
		noCache      bool
		xlsx         bool
		store        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full simulation batch and write the result tables",
		Long: `Run the replication batch: simulate grouped datasets, apply the three
tests to every control-vs-group comparison, and aggregate rejection and
agreement rates. A snapshot of the unified result set is kept so an
identical parameter set is never recomputed.

Example: simbench run --replications 10000 --sizes 25,50,100 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := config.ParseSampleSizes(sizesSpec)
			if err != nil {
				return err
			}
			plan := app.RunPlan{
				Replications: replications,
				SampleSizes:  sizes,
				Catalog:      study.DefaultCatalog(),
				Seed:         seed,
				Workers:      workers,
			}
			return runBatch(cmd.Context(), cfg, plan, alpha, outDir, noCache, xlsx, store)
		},
	}

	cmd.Flags().IntVar(&replications, "replications", cfg.Replications, "Number of independent replications")
	cmd.Flags().StringVar(&sizesSpec, "sizes", sizesString(cfg.SampleSizes), "Comma-separated per-group sample sizes")
	cmd.Flags().Uint64Var(&seed, "seed", cfg.Seed, "Top-level random seed")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Alpha, "Significance threshold")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "Worker count (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&outDir, "out", cfg.OutDir, "Output directory for the CSV tables")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute even when a matching snapshot exists")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Also write an xlsx workbook with all three tables")
	cmd.Flags().BoolVar(&store, "store", false, "Also persist the run to Postgres (DATABASE_URL)")

	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config, plan app.RunPlan, alpha float64, outDir string, noCache, xlsx, store bool) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	key, err := snapshot.KeyFor(plan.Replications, plan.SampleSizes, plan.Seed, plan.Catalog)
	if err != nil {
		return err
	}
	snapStore := snapshot.NewStore(cfg.SnapshotDir)

	var (
		runID      core.RunID
		records    []study.ReplicationRecord
		degenerate int
	)
	if !noCache {
		if snap, err := snapStore.Load(key); err == nil {
			logger.Info("reusing snapshot for %s (%d records)", key, len(snap.Records))
			runID = snap.RunID
			records = snap.Records
			degenerate = len(snap.Degenerate)
		} else if !errors.Is(err, os.ErrNotExist) {
			// A mismatched or unreadable snapshot is reported, then the
			// batch recomputes; it never reuses questionable records.
			logger.Warn("ignoring snapshot: %v", err)
		}
	}

	if records == nil {
		result, err := app.NewDriver().Run(ctx, plan)
		if err != nil {
			return err
		}
		runID = result.RunID
		records = result.Records
		degenerate = result.DegenerateCount()
		snap := &snapshot.Snapshot{
			Key:        key,
			RunID:      result.RunID,
			CreatedAt:  time.Now().UTC(),
			Records:    result.Records,
			Degenerate: result.Degenerate,
		}
		if err := snapStore.Save(snap); err != nil {
			logger.Warn("snapshot not saved: %v", err)
		}
	}

	rejection, err := app.RejectionRates(records, alpha)
	if err != nil {
		return err
	}
	agreement, err := app.AgreementRates(records, alpha)
	if err != nil {
		return err
	}

	if err := writeTables(outDir, records, rejection, agreement); err != nil {
		return err
	}
	if xlsx {
		path := filepath.Join(outDir, "simbench.xlsx")
		if err := export.WriteXLSX(path, records, rejection, agreement); err != nil {
			return err
		}
		logger.Info("wrote %s", path)
	}
	if store {
		if cfg.DatabaseURL == "" {
			return core.NewConfigurationError("DATABASE_URL", "required with --store")
		}
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := postgres.NewResultRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := repo.SaveRun(ctx, runID, records, rejection, agreement); err != nil {
			return err
		}
		logger.Info("stored run %s to postgres", runID)
	}

	logger.Info("run %s complete: %d records, %d degenerate cells", runID, len(records), degenerate)
	return nil
}

func newRatesCmd(cfg *config.Config) *cobra.Command {
	var (
		replications int
		sizesSpec    string
		seed         uint64
		alpha        float64
		outDir       string
	)

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Recompute aggregate tables from an existing snapshot",
		Long: `Recompute rejection and agreement rates from a previously saved
snapshot, typically at a different significance threshold. Fails when no
snapshot matches the parameters; it never re-runs the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := config.ParseSampleSizes(sizesSpec)
			if err != nil {
				return err
			}
			key, err := snapshot.KeyFor(replications, sizes, seed, study.DefaultCatalog())
			if err != nil {
				return err
			}
			snap, err := snapshot.NewStore(cfg.SnapshotDir).Load(key)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no snapshot for %s; run `simbench run` first", key)
				}
				return err
			}
			rejection, err := app.RejectionRates(snap.Records, alpha)
			if err != nil {
				return err
			}
			agreement, err := app.AgreementRates(snap.Records, alpha)
			if err != nil {
				return err
			}
			return writeTables(outDir, snap.Records, rejection, agreement)
		},
	}

	cmd.Flags().IntVar(&replications, "replications", cfg.Replications, "Replication count of the snapshot")
	cmd.Flags().StringVar(&sizesSpec, "sizes", sizesString(cfg.SampleSizes), "Sample sizes of the snapshot")
	cmd.Flags().Uint64Var(&seed, "seed", cfg.Seed, "Seed of the snapshot")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Alpha, "Significance threshold for the aggregates")
	cmd.Flags().StringVar(&outDir, "out", cfg.OutDir, "Output directory for the CSV tables")

	return cmd
}

func newDescribeCmd(cfg *config.Config) *cobra.Command {
	var (
		size int
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Simulate one dataset and print per-group summary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := rand.NewPCG(seed, 0)
			ds, err := simulate.Simulate(study.DefaultCatalog(), size, src)
			if err != nil {
				return err
			}
			summaries, err := profiling.Summarize(ds)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "scenario\tgroup\tn\tmean\tsd\tmin\tq25\tmedian\tq75\tmax")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
					s.Scenario, s.Group, s.N, s.Mean, s.StdDev, s.Min, s.Q25, s.Median, s.Q75, s.Max)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&size, "size", 100, "Per-group sample size")
	cmd.Flags().Uint64Var(&seed, "seed", cfg.Seed, "Random seed")

	return cmd
}

func writeTables(outDir string, records []study.ReplicationRecord,
	rejection []study.RejectionRateRow, agreement []study.AgreementRateRow) error {

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"results.csv", func(f *os.File) error { return export.WriteResultsCSV(f, records) }},
		{"rejection_rates.csv", func(f *os.File) error { return export.WriteRejectionCSV(f, rejection) }},
		{"agreement_rates.csv", func(f *os.File) error { return export.WriteAgreementCSV(f, agreement) }},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(outDir, file.name))
		if err != nil {
			return err
		}
		if err := file.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("wrote %s", filepath.Join(outDir, file.name))
	}
	return nil
}

func sizesString(sizes []int) string {
	out := ""
	for i, n := range sizes {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprint(n)
	}
	return out
}
