package datalake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txWithAmount(id string, customer string, amount float64, ts time.Time) EnrichedTransaction {
	return EnrichedTransaction{
		Transaction: Transaction{ID: id, CustomerID: customer, TotalAmount: amount, Timestamp: ts},
		Items:       []EnrichedItem{},
	}
}

func TestComputeKPIs(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	enriched := []EnrichedTransaction{
		txWithAmount("T1", "C1", 100, base),
		txWithAmount("T2", "C2", 200, base.Add(time.Hour)),
		txWithAmount("T3", "C3", 300, base.Add(2*time.Hour)),
		txWithAmount("T4", "C4", 400, base.Add(3*time.Hour)),
	}

	kpi := computeKPIs(enriched)
	assert.Equal(t, 1000.0, kpi.TotalSales)
	assert.Equal(t, 4, kpi.TransactionCount)
	assert.Equal(t, 250.00, kpi.AvgBasketSize)
	// Recent half [400,300]=700 against older half [200,100]=300.
	assert.Equal(t, 133.33, kpi.GrowthRate)
}

func TestComputeKPIsEmptyAndZeroOlderHalf(t *testing.T) {
	kpi := computeKPIs(nil)
	assert.Zero(t, kpi.TotalSales)
	assert.Zero(t, kpi.TransactionCount)
	assert.Zero(t, kpi.AvgBasketSize)
	assert.Zero(t, kpi.GrowthRate)

	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	enriched := []EnrichedTransaction{
		txWithAmount("T1", "C1", 0, base),
		txWithAmount("T2", "C2", 500, base.Add(time.Hour)),
	}
	kpi = computeKPIs(enriched)
	// Older half sums to zero: growth is defined as 0, not infinity.
	assert.Equal(t, 0.0, kpi.GrowthRate)
}

func TestComputeProductPerformance(t *testing.T) {
	noodles := &Product{ID: "P1", Name: "Instant Noodles", Category: "Food"}
	soap := &Product{ID: "P2", Name: "Detergent Bar", Category: "Household"}
	alpha := &Brand{ID: "B1", Name: "Alpha"}

	enriched := []EnrichedTransaction{
		{
			Transaction: Transaction{ID: "T1"},
			Items: []EnrichedItem{
				{TransactionItem: TransactionItem{ProductID: "P1", Quantity: 2, LineTotal: 150}, Product: noodles, Brand: alpha},
				{TransactionItem: TransactionItem{ProductID: "P1", Quantity: 1, LineTotal: 75}, Product: noodles, Brand: alpha},
				{TransactionItem: TransactionItem{ProductID: "P2", Quantity: 1, LineTotal: 100}, Product: soap},
			},
		},
		{
			Transaction: Transaction{ID: "T2"},
			Items: []EnrichedItem{
				{TransactionItem: TransactionItem{ProductID: "P1", Quantity: 1, LineTotal: 75}, Product: noodles, Brand: alpha},
			},
		},
	}

	ranked := computeProductPerformance(enriched)
	require.Len(t, ranked, 2)

	assert.Equal(t, "P1", ranked[0].ProductID)
	assert.Equal(t, 300.0, ranked[0].Revenue)
	assert.Equal(t, 4.0, ranked[0].Quantity)
	// Two items of P1 inside T1 count as one transaction.
	assert.Equal(t, 2, ranked[0].TransactionCount)
	assert.Equal(t, "Alpha", ranked[0].Brand)

	assert.Equal(t, "P2", ranked[1].ProductID)
	assert.Equal(t, 100.0, ranked[1].Revenue)
}

func TestComputeProductPerformanceTopLimit(t *testing.T) {
	enriched := make([]EnrichedTransaction, 0, 60)
	for i := 0; i < 60; i++ {
		enriched = append(enriched, EnrichedTransaction{
			Transaction: Transaction{ID: string(rune('A' + i))},
			Items: []EnrichedItem{
				{TransactionItem: TransactionItem{ProductID: "P" + string(rune('0'+i%10)) + string(rune('0'+i/10)), Quantity: 1, LineTotal: float64(i + 1)}},
			},
		})
	}

	ranked := computeProductPerformance(enriched)
	assert.LessOrEqual(t, len(ranked), topProductsLimit)
	// Descending by revenue.
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Revenue, ranked[i].Revenue)
	}
}

func TestComputeConsumerBehaviorSegmentation(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	enriched := []EnrichedTransaction{
		txWithAmount("T1", "C1", 100, base),
		txWithAmount("T2", "C2", 300, base),
		txWithAmount("T3", "C3", 900, base),
		txWithAmount("T4", "C4", 1200, base),
	}

	cb := computeConsumerBehavior(enriched)
	require.Equal(t, 4, cb.CustomerCount)
	assert.Equal(t, 625.0, cb.AvgSpend)

	byName := map[string]CustomerSegment{}
	for _, seg := range cb.Segments {
		byName[seg.Segment] = seg
	}

	// avg=625, 2x avg=1250. 1200 is not strictly above 1250, so no Premium.
	assert.Equal(t, 0, byName["Premium"].CustomerCount)
	assert.Equal(t, 2, byName["Regular"].CustomerCount)    // 900, 1200
	assert.Equal(t, 2, byName["Occasional"].CustomerCount) // 100, 300

	assert.Equal(t, 50.0, byName["Regular"].Share)
	assert.Equal(t, 50.0, byName["Occasional"].Share)
	assert.Equal(t, 1050.0, byName["Regular"].AvgSpend)
	assert.Equal(t, 200.0, byName["Occasional"].AvgSpend)
}

func TestConsumerBehaviorExactBoundaries(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Four customers spending 50, 100, 150, 100: avg=100, 2x avg=200.
	enriched := []EnrichedTransaction{
		txWithAmount("T1", "C1", 50, base),
		txWithAmount("T2", "C2", 100, base),
		txWithAmount("T3", "C3", 150, base),
		txWithAmount("T4", "C4", 100, base),
	}

	cb := computeConsumerBehavior(enriched)
	require.Equal(t, 100.0, cb.AvgSpend)

	byName := map[string]CustomerSegment{}
	for _, seg := range cb.Segments {
		byName[seg.Segment] = seg
	}

	// Spend exactly at the average is Occasional (<= avg), not Regular.
	assert.Equal(t, 3, byName["Occasional"].CustomerCount)
	// 150 is strictly above avg and at most 2x avg: Regular.
	assert.Equal(t, 1, byName["Regular"].CustomerCount)
	assert.Equal(t, 0, byName["Premium"].CustomerCount)
}

func TestConsumerBehaviorTwoTimesAverageBoundary(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Two customers spending 100 and 200: avg=150, 2x avg=300.
	// 200 <= 300 stays Regular; only a spend above 300 would be Premium.
	enriched := []EnrichedTransaction{
		txWithAmount("T1", "C1", 100, base),
		txWithAmount("T2", "C2", 200, base),
	}

	cb := computeConsumerBehavior(enriched)
	byName := map[string]CustomerSegment{}
	for _, seg := range cb.Segments {
		byName[seg.Segment] = seg
	}
	assert.Equal(t, 0, byName["Premium"].CustomerCount)
	assert.Equal(t, 1, byName["Regular"].CustomerCount)
	assert.Equal(t, 1, byName["Occasional"].CustomerCount)
}

func TestComputeTrends(t *testing.T) {
	mk := func(day, hour int, amount float64) EnrichedTransaction {
		return txWithAmount("T", "C", amount, time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC))
	}
	enriched := []EnrichedTransaction{
		mk(2, 9, 100),
		mk(1, 10, 50),
		mk(2, 15, 25),
	}

	points := computeTrends(enriched)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-03-01", points[0].Date)
	assert.Equal(t, 50.0, points[0].Revenue)
	assert.Equal(t, "2025-03-02", points[1].Date)
	assert.Equal(t, 125.0, points[1].Revenue)
	assert.Equal(t, 2, points[1].TransactionCount)
}

func TestFilterOptionsAndCounts(t *testing.T) {
	ds := testDataset()

	assert.Equal(t, []string{"Manila", "Quezon City"}, filterOptions(ds, "city"))
	assert.Equal(t, []string{"Alpha", "Beta"}, filterOptions(ds, "brand"))
	assert.Equal(t, []string{"NOODLE-01", "SOAP-02"}, filterOptions(ds, "sku"))
	assert.Empty(t, filterOptions(ds, "unknown-type"))

	counts := filterCounts(ds)
	assert.Equal(t, 1, counts["region"])
	assert.Equal(t, 2, counts["brand"])
	assert.Equal(t, 1, counts["holding_company"])
	assert.Equal(t, 2, counts["client"])
}
