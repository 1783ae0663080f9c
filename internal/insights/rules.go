package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scoutlabs/retail-pulse/internal/datalake"
)

// RuleBased derives insights from the aggregates directly, without any
// model call. Used when no Gemini credentials are configured.
type RuleBased struct{}

var _ datalake.InsightsGenerator = (*RuleBased)(nil)

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Generate(ctx context.Context, kpi datalake.KPIMetrics, products []datalake.ProductPerformance) (json.RawMessage, error) {
	var lines []string

	switch {
	case kpi.GrowthRate > 0:
		lines = append(lines, fmt.Sprintf("Sales are trending up %.2f%% in the more recent half of the selected period.", kpi.GrowthRate))
	case kpi.GrowthRate < 0:
		lines = append(lines, fmt.Sprintf("Sales are down %.2f%% in the more recent half of the selected period.", -kpi.GrowthRate))
	default:
		lines = append(lines, "Sales are flat across the selected period.")
	}

	lines = append(lines, fmt.Sprintf("The average basket is %.2f PHP across %d transactions.", kpi.AvgBasketSize, kpi.TransactionCount))

	if len(products) > 0 {
		top := products[0]
		share := 0.0
		if kpi.TotalSales > 0 {
			share = top.Revenue / kpi.TotalSales * 100
		}
		lines = append(lines, fmt.Sprintf("%s leads the product ranking with %.2f PHP in revenue (%.1f%% of total sales).", top.ProductName, top.Revenue, share))
	}

	out, err := json.Marshal(map[string]interface{}{
		"insights":     lines,
		"generated_by": "rules",
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: marshal insights: %w", err)
	}
	return out, nil
}
