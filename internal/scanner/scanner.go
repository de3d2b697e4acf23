// Package scanner turns the text extracted from a supermarket receipt PDF into a purchase record.
package scanner

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

var (
	// ErrEmptyText is returned when the extractor produced no text
	ErrEmptyText = errors.New("receipt text is empty")
	// ErrDateNotFound is returned when no "<day> de <month> de <year>" header exists
	ErrDateNotFound = errors.New("purchase date not found")
	// ErrUnknownMonth is returned when the month name is not a Portuguese month
	ErrUnknownMonth = errors.New("unknown month name")
	// ErrTotalNotFound is returned when no "TotalR$ <amount>" fragment exists
	ErrTotalNotFound = errors.New("purchase total not found")
)

// ParseError represents a receipt that could not be turned into a purchase
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

var dateRe = regexp.MustCompile(`(\d+) de (\p{L}+) de (\d{4})`)

const (
	substitutedToken = "Substituído"
	outOfStockToken  = "Esgotado"
	currencyToken    = "R$"
)

// Scanner parses receipt text into purchases
type Scanner struct {
	newID func() string
}

// Option configures a Scanner
type Option func(*Scanner)

// WithIDGenerator overrides how purchase and line item ids are generated
func WithIDGenerator(fn func() string) Option {
	return func(s *Scanner) {
		s.newID = fn
	}
}

// New creates a Scanner that assigns random UUIDs by default
func New(opts ...Option) *Scanner {
	s := &Scanner{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse builds a purchase from the full text of one receipt. Either the whole
// purchase is returned or an error; individual malformed items are dropped.
func (s *Scanner) Parse(text string) (*domain.Purchase, error) {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Op: "read_text", Err: ErrEmptyText}
	}

	date, err := parseDate(text)
	if err != nil {
		return nil, &ParseError{Op: "parse_date", Err: err}
	}

	total, ok := findAmount(totalRe, text)
	if !ok {
		return nil, &ParseError{Op: "parse_total", Err: ErrTotalNotFound}
	}

	purchase := &domain.Purchase{
		ID:       s.newID(),
		Date:     date,
		Total:    total.Round(2).InexactFloat64(),
		Products: []domain.LineItem{},
	}

	for _, item := range scanItems(splitLines(text)) {
		item.ID = s.newID()
		item.PurchaseID = purchase.ID
		purchase.Products = append(purchase.Products, item)
	}

	return purchase, nil
}

// parseDate finds the receipt header date and normalizes it to YYYY-MM-DD
func parseDate(text string) (string, error) {
	match := dateRe.FindStringSubmatch(text)
	if match == nil {
		return "", ErrDateNotFound
	}

	day, monthName, year := match[1], match[2], match[3]
	month, ok := monthNumber(monthName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMonth, monthName)
	}
	if len(day) < 2 {
		day = "0" + day
	}

	return fmt.Sprintf("%s-%s-%s", year, month, day), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// parseQuantity reports whether line is a quantity marker
func parseQuantity(line string) (int, bool) {
	if !quantityRe.MatchString(line) {
		return 0, false
	}
	quantity, err := strconv.Atoi(line)
	if err != nil || quantity <= 0 {
		return 0, false
	}
	return quantity, true
}
