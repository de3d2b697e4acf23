package scanner

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches a comma-decimal amount with optional thousands dots, e.g. 1.234,56
const amountPattern = `(\d[\d.]*(?:,\d+)?)`

var (
	totalRe      = regexp.MustCompile(`TotalR\$ ?` + amountPattern)
	priceRe      = regexp.MustCompile(`R\$ ?` + amountPattern)
	unitPriceRe  = regexp.MustCompile(`R\$ ?` + amountPattern + `/pc`)
	weightRe     = regexp.MustCompile(`Final ` + amountPattern + ` kg`)
	pricePerKgRe = regexp.MustCompile(`R\$ ?` + amountPattern + `/kg`)
	quantityRe   = regexp.MustCompile(`^\d+$`)
)

// parseAmount converts a Brazilian-formatted amount fragment into a decimal
func parseAmount(fragment string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(fragment, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	return decimal.NewFromString(normalized)
}

// findAmount returns the first amount captured by re in line
func findAmount(re *regexp.Regexp, line string) (decimal.Decimal, bool) {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return decimal.Zero, false
	}

	amount, err := parseAmount(match[1])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// findOptionalAmount is findAmount returning nil when nothing matched
func findOptionalAmount(re *regexp.Regexp, line string) *float64 {
	amount, ok := findAmount(re, line)
	if !ok {
		return nil
	}
	value := amount.InexactFloat64()
	return &value
}
