package reports

import (
	"encoding/json"
	"math"
	"strconv"

	"bizpilot/internal/core"
	"bizpilot/internal/store"
)

// Summary holds the financial aggregates derived from the full transactions
// list. There is exactly one implementation of these formulas; every
// presentation surface consumes it.
type Summary struct {
	TotalSales    float64 `json:"totalSales"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
	// ProfitMargin is netProfit/totalSales as a percentage, rounded to one
	// decimal place. Zero when there are no sales.
	ProfitMargin float64 `json:"profitMargin"`
}

// Summarize computes the aggregates over a transactions sequence. Missing or
// non-numeric amounts contribute 0 rather than failing the computation.
func Summarize(transactions []store.Document) Summary {
	var sales, expenses float64
	for _, t := range transactions {
		amount := coerceAmount(t["amount"])
		switch t["type"] {
		case core.TypeSale:
			sales += amount
		case core.TypeExpense:
			expenses += amount
		}
	}

	net := sales - expenses
	margin := 0.0
	if sales > 0 {
		margin = math.Round(net/sales*1000) / 10
	}

	return Summary{
		TotalSales:    sales,
		TotalExpenses: expenses,
		NetProfit:     net,
		ProfitMargin:  margin,
	}
}

// Stats holds the non-financial dashboard counters.
type Stats struct {
	PendingTasks int
	TotalTasks   int
	TotalClients int
	LatestClient string
}

// ComputeStats derives task and client counters for the dashboard header.
// Clients arrive newest first, so the first entry is the latest.
func ComputeStats(tasks, clients []store.Document) Stats {
	stats := Stats{
		TotalTasks:   len(tasks),
		TotalClients: len(clients),
	}
	for _, t := range tasks {
		if t["status"] == core.StatusPending {
			stats.PendingTasks++
		}
	}
	if len(clients) > 0 {
		stats.LatestClient, _ = clients[0]["name"].(string)
	}
	return stats
}

// coerceAmount converts whatever landed in the amount field to a float64,
// defaulting to 0 for anything non-numeric.
func coerceAmount(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
