package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders a major-unit amount with the currency's symbol and separators.
// Unknown codes fall back to the plain amount followed by the code.
func Format(amount float64, code string) string {
	code = strings.ToUpper(code)
	c := money.GetCurrency(code)
	if c == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + code
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
