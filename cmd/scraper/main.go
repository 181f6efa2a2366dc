// The scraper command captures fallback quotes for tickers the stock feed
// does not cover. It drives a headless browser to a quote page per ticker,
// reads the price and shares-outstanding figures, and merges them into the
// static quote table the market-cap resolver falls back to.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"mnavcli/internal/config"
	"mnavcli/internal/infrastructure"
	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
)

func main() {
	tickers := flag.String("tickers", "", "comma-separated tickers to capture (required)")
	urlTemplate := flag.String("url", "https://finance.example.com/quote/%s", "quote page URL, %s is replaced with the ticker")
	priceSel := flag.String("price-selector", `[data-field="regularMarketPrice"]`, "CSS selector for the price element")
	sharesSel := flag.String("shares-selector", `[data-field="sharesOutstanding"]`, "CSS selector for the shares-outstanding element")
	currency := flag.String("currency", "USD", "quote currency (ISO 4217)")
	outFile := flag.String("out", "", "static quote table to update (defaults to the configured path)")
	headless := flag.Bool("headless", true, "run browser headless")
	timeout := flag.Duration("timeout", 45*time.Second, "per-ticker page timeout")
	flag.Parse()

	if *tickers == "" {
		fmt.Fprintln(os.Stderr, "Error: -tickers is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		cfg = &config.Config{}
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *outFile == "" {
		*outFile = cfg.Paths.StaticQuotesFile
	}

	quotes, err := registry.LoadStaticQuotes(*outFile)
	if err != nil {
		logger.Error("failed to read existing quote table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", *headless),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	asOf := time.Now().UTC().Format(time.DateOnly)
	captured := 0
	for _, ticker := range strings.Split(*tickers, ",") {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		quote, err := captureQuote(browserCtx, *urlTemplate, ticker, *priceSel, *sharesSel, *timeout)
		if err != nil {
			logger.Error("capture failed",
				slog.String("ticker", ticker),
				slog.String("error", err.Error()))
			continue
		}
		quote.Currency = strings.ToUpper(*currency)
		quote.AsOf = asOf
		quotes[ticker] = quote
		captured++
		logger.Info("quote captured",
			slog.String("ticker", ticker),
			slog.Float64("price", quote.Price),
			slog.Float64("shares_outstanding", quote.SharesOutstanding))
	}

	if captured == 0 {
		logger.Error("no quotes captured, leaving table untouched")
		os.Exit(1)
	}
	if err := writeQuoteTable(*outFile, quotes); err != nil {
		logger.Error("failed to write quote table", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("quote table updated",
		slog.String("path", *outFile),
		slog.Int("captured", captured),
		slog.Int("total", len(quotes)))
}

// captureQuote loads one quote page and reads the price and shares figures.
func captureQuote(parent context.Context, urlTemplate, ticker, priceSel, sharesSel string, timeout time.Duration) (mnav.StaticQuote, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	var priceText, sharesText string
	tasks := chromedp.Tasks{
		chromedp.Navigate(fmt.Sprintf(urlTemplate, ticker)),
		chromedp.WaitVisible(priceSel, chromedp.ByQuery),
		chromedp.Text(priceSel, &priceText, chromedp.ByQuery),
		chromedp.Text(sharesSel, &sharesText, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return mnav.StaticQuote{}, fmt.Errorf("page scrape failed: %w", err)
	}

	price, err := parseFigure(priceText)
	if err != nil {
		return mnav.StaticQuote{}, fmt.Errorf("bad price %q: %w", priceText, err)
	}
	shares, err := parseFigure(sharesText)
	if err != nil {
		return mnav.StaticQuote{}, fmt.Errorf("bad shares outstanding %q: %w", sharesText, err)
	}
	if price <= 0 || shares <= 0 {
		return mnav.StaticQuote{}, fmt.Errorf("non-positive figures: price=%v shares=%v", price, shares)
	}
	return mnav.StaticQuote{Price: price, SharesOutstanding: shares}, nil
}

var figurePattern = regexp.MustCompile(`[0-9][0-9,\.]*`)

// parseFigure extracts a number from display text like "1,234.56" or
// "19.2B", scaling K/M/B/T suffixes.
func parseFigure(text string) (float64, error) {
	match := figurePattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no number found")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	rest := strings.TrimSpace(text[strings.Index(text, match)+len(match):])
	switch {
	case strings.HasPrefix(rest, "K"):
		v *= 1e3
	case strings.HasPrefix(rest, "M"):
		v *= 1e6
	case strings.HasPrefix(rest, "B"):
		v *= 1e9
	case strings.HasPrefix(rest, "T"):
		v *= 1e12
	}
	return v, nil
}

func writeQuoteTable(path string, quotes map[string]mnav.StaticQuote) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
