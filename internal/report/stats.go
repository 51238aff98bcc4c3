package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"bookkeeper/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CategoryStat is one category's share of a set of transactions.
type CategoryStat struct {
	Category   string
	Total      decimal.Decimal
	Count      int
	Percentage decimal.Decimal
}

// CategoryStats groups transactions by category, largest total first.
// Percentages are of the grand total and are zero when it is zero.
func CategoryStats(transactions []models.Transaction) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat
	total := decimal.Zero

	for _, t := range transactions {
		i, ok := index[t.Category]
		if !ok {
			i = len(stats)
			index[t.Category] = i
			stats = append(stats, CategoryStat{Category: t.Category, Total: decimal.Zero})
		}
		stats[i].Total = stats[i].Total.Add(t.Amount)
		stats[i].Count++
		total = total.Add(t.Amount)
	}

	for i := range stats {
		stats[i].Percentage = decimal.Zero
		if total.IsPositive() {
			stats[i].Percentage = stats[i].Total.Mul(hundred).DivRound(total, 1)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if !stats[i].Total.Equal(stats[j].Total) {
			return stats[i].Total.GreaterThan(stats[j].Total)
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}
