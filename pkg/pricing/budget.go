package pricing

import (
	"math"
	"strings"
	"unicode"
)

// Budget is one of the fixed budget brackets offered by the quote wizard
type Budget struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	// Max is zero for the open-ended top bracket
	Max int `json:"max"`
}

var budgets = []Budget{
	{Value: "under-1000", Label: "Under $1,000", Min: 0, Max: 1000},
	{Value: "1000-5000", Label: "$1,000 - $5,000", Min: 1000, Max: 5000},
	{Value: "5000-10000", Label: "$5,000 - $10,000", Min: 5000, Max: 10000},
	{Value: "10000-25000", Label: "$10,000 - $25,000", Min: 10000, Max: 25000},
	{Value: "25000-plus", Label: "$25,000+", Min: 25000},
	{Value: "not-sure", Label: "Not sure yet"},
}

var budgetAliases = map[string]string{
	"25000+":   "25000-plus",
	"notsure":  "not-sure",
	"unsure":   "not-sure",
	"under1k":  "under-1000",
	"1k5k":     "1000-5000",
	"5k10k":    "5000-10000",
	"10k25k":   "10000-25000",
	"25k+":     "25000-plus",
	"25kplus":  "25000-plus",
	"flexible": "not-sure",
}

var budgetIndex = buildBudgetIndex()

func buildBudgetIndex() map[string]Budget {
	idx := make(map[string]Budget, len(budgets)*2+len(budgetAliases))
	byValue := make(map[string]Budget, len(budgets))
	for _, b := range budgets {
		byValue[b.Value] = b
		idx[budgetKey(b.Value)] = b
		idx[budgetKey(b.Label)] = b
	}
	for alias, value := range budgetAliases {
		idx[budgetKey(alias)] = byValue[value]
	}
	return idx
}

// budgetKey lower-cases s and keeps only letters, digits and '+'
func budgetKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Budgets returns the budget brackets in display order
func Budgets() []Budget {
	out := make([]Budget, len(budgets))
	copy(out, budgets)
	return out
}

// ParseBudget matches raw against bracket values, labels and common aliases.
// Unrecognised input returns false; callers keep it as an ad hoc string.
func ParseBudget(raw string) (Budget, bool) {
	key := budgetKey(raw)
	if key == "" {
		return Budget{}, false
	}
	b, ok := budgetIndex[key]
	return b, ok
}

// BudgetForRange returns the bracket containing the midpoint of r
func BudgetForRange(r Range) Budget {
	mid := r.Min + (r.Max-r.Min)/2
	for _, b := range budgets {
		if b.Value == "not-sure" {
			continue
		}
		if mid >= b.Min && (b.Max == 0 || mid < b.Max) {
			return b
		}
	}
	return budgets[len(budgets)-1]
}

// ToMinorUnits converts a major-unit amount into the gateway's minor units
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts minor units back into a major-unit amount
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
