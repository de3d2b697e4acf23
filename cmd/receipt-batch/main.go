// Command receipt-batch parses a directory of receipt PDFs and folds them into
// one purchase history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/currency"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/export"
	"github.com/ridwanfathin/market-receipts-service/internal/extract"
	"github.com/ridwanfathin/market-receipts-service/internal/logger"
	"github.com/ridwanfathin/market-receipts-service/internal/scanner"
)

type options struct {
	dir       string
	statePath string
	xlsxPath  string
	currency  string
}

func main() {
	var opts options
	var extractorKind, pdftotextPath, logLevel string
	flag.StringVar(&opts.dir, "dir", "receipts", "directory containing receipt PDFs")
	flag.StringVar(&opts.statePath, "state", "", "write the resulting purchase history as JSON to this file")
	flag.StringVar(&opts.xlsxPath, "out", "", "write the purchases workbook to this file")
	flag.StringVar(&opts.currency, "currency", "BRL", "currency used to display amounts")
	flag.StringVar(&extractorKind, "extractor", extract.KindNative, "text extractor: native or pdftotext")
	flag.StringVar(&pdftotextPath, "pdftotext", "pdftotext", "path to the pdftotext binary")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.Parse()

	zlog, err := logger.New(logger.Config{ServiceName: "receipt-batch", Level: logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	extractor, err := extract.New(extractorKind, pdftotextPath, zlog)
	if err != nil {
		zlog.Fatal("invalid extractor", zap.Error(err))
	}

	if err := run(context.Background(), opts, extractor, os.Stdout, zlog); err != nil {
		zlog.Fatal("batch failed", zap.Error(err))
	}
}

// run parses every PDF in opts.dir, in name order. Unreadable receipts are
// reported and skipped.
func run(ctx context.Context, opts options, extractor extract.TextExtractor, out io.Writer, zlog *zap.Logger) error {
	files, err := pdfFiles(opts.dir)
	if err != nil {
		return err
	}

	parser := scanner.New()
	var purchases []domain.Purchase
	for _, path := range files {
		purchase, err := parseFile(ctx, extractor, parser, path)
		if err != nil {
			zlog.Warn("skipping receipt", zap.String("file", path), zap.Error(err))
			fmt.Fprintf(out, "%s: skipped (%v)\n", filepath.Base(path), err)
			continue
		}
		printPurchase(out, filepath.Base(path), purchase, opts.currency)
		purchases = append(purchases, *purchase)
	}

	state, err := corpus.NewReducer().AddReceipt(corpus.Empty(), purchases...)
	if err != nil {
		return fmt.Errorf("failed to build purchase history: %w", err)
	}
	fmt.Fprintf(out, "\n%d receipts, %d products\n", len(state.Purchases), len(state.Products))

	if opts.statePath != "" {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode purchase history: %w", err)
		}
		if err := os.WriteFile(opts.statePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.statePath, err)
		}
	}

	if opts.xlsxPath != "" {
		data, err := export.PurchasesXLSX(state)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.xlsxPath, err)
		}
	}

	return nil
}

func pdfFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func parseFile(ctx context.Context, extractor extract.TextExtractor, parser *scanner.Scanner, path string) (*domain.Purchase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := extractor.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}
	return parser.Parse(text)
}

func printPurchase(out io.Writer, name string, p *domain.Purchase, code string) {
	fmt.Fprintf(out, "%s: %s, total %s, %d items\n", name, p.Date, currency.Format(p.Total, code), len(p.Products))
	for _, item := range p.Products {
		line := fmt.Sprintf("  %dx %s %s", item.Quantity, item.Name, currency.Format(item.TotalPrice, code))
		switch {
		case item.Weight != nil:
			line += fmt.Sprintf(" (%.3f kg)", *item.Weight)
		case item.UnitPrice != nil:
			line += fmt.Sprintf(" (%s/pc)", currency.Format(*item.UnitPrice, code))
		}
		if item.Substituted != nil {
			line += " -> " + *item.Substituted
		}
		if item.OutOfStock {
			line += " [esgotado]"
		}
		fmt.Fprintln(out, line)
	}
}
