package scanner

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var portugueseMonths = map[string]string{
	"janeiro":   "01",
	"fevereiro": "02",
	"março":     "03",
	"abril":     "04",
	"maio":      "05",
	"junho":     "06",
	"julho":     "07",
	"agosto":    "08",
	"setembro":  "09",
	"outubro":   "10",
	"novembro":  "11",
	"dezembro":  "12",
}

// monthNumber resolves a Portuguese month name to its two-digit number
func monthNumber(name string) (string, bool) {
	month, ok := portugueseMonths[cases.Lower(language.BrazilianPortuguese).String(name)]
	return month, ok
}
