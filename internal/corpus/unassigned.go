package corpus

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

const maxCandidates = 3

// Candidate is a canonical product that resembles an unassigned raw name
type Candidate struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Distance  int    `json:"distance"`
}

// UnassignedName is a raw line-item name that no association points at
type UnassignedName struct {
	Name        string      `json:"name"`
	Occurrences int         `json:"occurrences"`
	Candidates  []Candidate `json:"candidates"`
}

// Unassigned lists raw names excluded from aggregation, in encounter order,
// each with the closest canonical products. Candidates are only suggestions.
func Unassigned(state State) []UnassignedName {
	var order []string
	counts := make(map[string]int)
	for _, pp := range state.PurchaseProducts {
		if _, ok := state.ProductAssociations[pp.ProductName]; ok {
			continue
		}
		if counts[pp.ProductName] == 0 {
			order = append(order, pp.ProductName)
		}
		counts[pp.ProductName]++
	}

	names := make([]UnassignedName, 0, len(order))
	for _, name := range order {
		names = append(names, UnassignedName{
			Name:        name,
			Occurrences: counts[name],
			Candidates:  candidates(name, state.Products),
		})
	}
	return names
}

// candidates ranks products whose name fuzzily matches raw in either
// direction, closest first.
func candidates(raw string, products []domain.Product) []Candidate {
	found := []Candidate{}
	for _, p := range products {
		rank := fuzzy.RankMatchNormalizedFold(p.Name, raw)
		if rank < 0 {
			rank = fuzzy.RankMatchNormalizedFold(raw, p.Name)
		}
		if rank < 0 {
			continue
		}
		found = append(found, Candidate{ProductID: p.ProductID, Name: p.Name, Distance: rank})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})
	if len(found) > maxCandidates {
		found = found[:maxCandidates]
	}
	return found
}
