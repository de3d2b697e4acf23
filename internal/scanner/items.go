package scanner

import (
	"strings"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

type scanState int

const (
	awaitQuantity scanState = iota
	awaitProductLine
	awaitPriceDetail
)

func (s scanState) String() string {
	switch s {
	case awaitQuantity:
		return "AWAIT_QUANTITY"
	case awaitProductLine:
		return "AWAIT_PRODUCT_LINE"
	case awaitPriceDetail:
		return "AWAIT_PRICE_DETAIL"
	default:
		return "UNKNOWN"
	}
}

// Line offsets relative to the quantity marker. Every item block is assumed to
// follow this fixed stride; blocks laid out differently are skipped or misparsed.
const (
	productLineOffset = 1
	priceDetailOffset = 3
)

// itemScanner walks receipt lines forward with an explicit cursor
type itemScanner struct {
	lines   []string
	cursor  int
	marker  int
	state   scanState
	current domain.LineItem
	items   []domain.LineItem
}

func scanItems(lines []string) []domain.LineItem {
	s := &itemScanner{lines: lines, state: awaitQuantity}
	for s.cursor < len(s.lines) {
		s.step()
	}

	// The reference line lies past the end of the text: keep the item without
	// price details.
	if s.state == awaitPriceDetail {
		s.emit()
	}
	return s.items
}

func (s *itemScanner) step() {
	line := s.lines[s.cursor]

	switch s.state {
	case awaitQuantity:
		quantity, ok := parseQuantity(line)
		if !ok {
			s.cursor++
			return
		}
		s.current = domain.LineItem{Quantity: quantity}
		s.marker = s.cursor
		s.state = awaitProductLine
		s.cursor = s.marker + productLineOffset

	case awaitProductLine:
		total, ok := findAmount(priceRe, line)
		if !ok {
			s.state = awaitQuantity
			s.cursor++
			return
		}
		s.current.TotalPrice = total.Round(2).InexactFloat64()
		s.current.Name = strings.TrimSpace(strings.SplitN(line, currencyToken, 2)[0])
		s.current.OutOfStock = strings.Contains(line, outOfStockToken)
		s.state = awaitPriceDetail
		s.cursor = s.marker + priceDetailOffset

	case awaitPriceDetail:
		applyPriceDetail(&s.current, line)
		if next := s.cursor + 1; next < len(s.lines) && strings.Contains(s.lines[next], substitutedToken) {
			substituted := strings.TrimSpace(strings.Replace(s.lines[next], substitutedToken, "", 1))
			s.current.Substituted = &substituted
		}
		s.emit()
		s.cursor++
	}
}

func (s *itemScanner) emit() {
	s.items = append(s.items, s.current)
	s.current = domain.LineItem{}
	s.state = awaitQuantity
}

// applyPriceDetail reads the reference line: a weight declaration when it
// mentions kg, a per-unit price otherwise
func applyPriceDetail(item *domain.LineItem, line string) {
	if strings.Contains(strings.ToLower(line), "kg") {
		item.Weight = findOptionalAmount(weightRe, line)
		item.PricePerKg = findOptionalAmount(pricePerKgRe, line)
		return
	}
	item.UnitPrice = findOptionalAmount(unitPriceRe, line)
}
