// Package export renders the purchase corpus as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
)

// Sheet names
const (
	PurchasesSheet = "Compras"
	MetricsSheet   = "Produtos"
)

var purchaseHeaders = []string{
	"Data",
	"Produto",
	"Produto canônico",
	"Quantidade",
	"Preço total",
	"Preço total (centavos)",
	"Preço unitário",
	"Peso (kg)",
	"Preço por kg",
	"Substituído por",
	"Esgotado",
}

var metricHeaders = []string{
	"Produto",
	"Compras",
	"Quantidade",
	"Total (centavos)",
	"Preço médio (centavos)",
	"Dias entre compras",
	"Última compra",
	"Variantes",
}

// PurchasesXLSX returns a workbook with one row per purchased line item and a
// second sheet with the product metrics.
func PurchasesXLSX(state corpus.State) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PurchasesSheet); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MetricsSheet); err != nil {
		return nil, fmt.Errorf("xlsx new sheet: %w", err)
	}

	names := make(map[string]string, len(state.Products))
	for _, p := range state.Products {
		names[p.ProductID] = p.Name
	}

	rows := make([][]any, 0, len(state.PurchaseProducts))
	for _, pp := range state.PurchaseProducts {
		rows = append(rows, []any{
			pp.Date,
			pp.ProductName,
			names[state.ProductAssociations[pp.ProductName]],
			pp.Quantity,
			pp.TotalPrice,
			pp.TotalPriceCents,
			optional(pp.UnitPrice),
			optional(pp.Weight),
			optional(pp.PricePerKg),
			optionalString(pp.Substituted),
			yesNo(pp.OutOfStock),
		})
	}
	if err := writeTable(f, PurchasesSheet, purchaseHeaders, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, m := range state.Metrics() {
		rows = append(rows, []any{
			m.ProductName,
			m.PurchaseCount,
			m.Quantity,
			m.TotalInCents,
			m.AveragePrice,
			m.AverageDaysBetweenPurchases,
			m.LastPurchaseDate,
			strings.Join(m.Variants, "; "),
		})
	}
	if err := writeTable(f, MetricsSheet, metricHeaders, rows); err != nil {
		return nil, err
	}

	// Widen a few columns
	_ = f.SetColWidth(PurchasesSheet, "A", "A", 12) // date
	_ = f.SetColWidth(PurchasesSheet, "B", "C", 36) // names
	_ = f.SetColWidth(PurchasesSheet, "J", "J", 28) // substitution
	_ = f.SetColWidth(MetricsSheet, "A", "A", 32)
	_ = f.SetColWidth(MetricsSheet, "H", "H", 60)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
