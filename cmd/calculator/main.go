// The calculator command computes the full mNAV table once and exports it.
//
// By default it assembles a live price snapshot from the configured feeds;
// with -snapshot it replays a saved snapshot JSON file instead, which makes
// runs reproducible and offline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"mnavcli/internal/config"
	"mnavcli/internal/exporter"
	"mnavcli/internal/feeds"
	"mnavcli/internal/infrastructure"
	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
	"mnavcli/internal/services"
	"mnavcli/pkg/contracts/domain"
)

func main() {
	snapshotFile := flag.String("snapshot", "", "replay a saved PriceSnapshot JSON file instead of hitting live feeds")
	format := flag.String("format", "csv", "export format: csv | xlsx | both | none")
	outDir := flag.String("out", "", "export directory (defaults to the configured exports dir)")
	flag.Parse()

	if err := run(*snapshotFile, *format, *outDir); err != nil {
		slog.Error("calculator failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(snapshotFile, format, outDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	reg, err := registry.New(registry.Options{
		Loader:           registry.NewFileLoader(cfg.Paths.CompaniesFile),
		ActionsFile:      cfg.Paths.ActionsFile,
		StaticQuotesFile: cfg.Paths.StaticQuotesFile,
		OverridesFile:    cfg.Paths.OverridesFile,
		CacheTTL:         cfg.Registry.CacheTTL,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	assembler := feeds.NewAssembler(
		feeds.NewCryptoFeed(cfg.Feeds.Crypto),
		feeds.NewStockFeed(cfg.Feeds.Stocks),
		feeds.NewForexFeed(cfg.Feeds.Forex),
		feeds.NewLSTFeed(cfg.Feeds.LST),
		logger, nil,
	)

	service, err := services.NewMNAVService(services.MNAVServiceOptions{
		Registry:  reg,
		Assembler: assembler,
		EngineConfig: mnav.Config{
			OutlierThreshold: cfg.Engine.OutlierThreshold,
			SanityUpperBound: cfg.Engine.SanityUpperBound,
		},
		MaxConcurrency: cfg.Engine.MaxConcurrency,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build mNAV service: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feeds.FetchTimeout)
	defer cancel()

	var set services.ValuationSet
	if snapshotFile != "" {
		snap, err := loadSnapshot(snapshotFile)
		if err != nil {
			return err
		}
		companies, err := reg.Companies(ctx)
		if err != nil {
			return fmt.Errorf("failed to load companies: %w", err)
		}
		set, err = service.Value(ctx, companies, snap)
		if err != nil {
			return err
		}
	} else {
		set, err = service.Refresh(ctx)
		if err != nil {
			return err
		}
	}

	printTable(set)

	if outDir == "" {
		outDir = cfg.Paths.ExportsDir
	}
	switch format {
	case "csv":
		_, err = exporter.NewCSVExporter(outDir, logger).Export(set)
	case "xlsx":
		_, err = exporter.NewXLSXExporter(outDir, logger).Export(set)
	case "both":
		if _, err = exporter.NewCSVExporter(outDir, logger).Export(set); err == nil {
			_, err = exporter.NewXLSXExporter(outDir, logger).Export(set)
		}
	case "none":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return err
}

func loadSnapshot(path string) (domain.PriceSnapshot, error) {
	var snap domain.PriceSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return snap, nil
}

func printTable(set services.ValuationSet) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tASSET\tMARKET CAP\tSOURCE\tCRYPTO NAV\tMNAV")
	for _, v := range set.Valuations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%s\n",
			v.Ticker, v.TreasuryAsset,
			nullable(v.MarketCap, "%.0f"), v.MarketCapSource,
			v.CryptoNAV, nullable(v.MNAV, "%.4f"))
	}
	fmt.Fprintf(w, "\nmedian %.4f\taverage %.4f\tcount %d\n",
		set.Stats.Median, set.Stats.Average, set.Stats.Count)
	w.Flush()
}

func nullable(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
