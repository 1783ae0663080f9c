package datalake

import (
	"math"
	"sort"
)

// topProductsLimit caps the product-performance ranking.
const topProductsLimit = 50

// KPIMetrics is the overview aggregate.
type KPIMetrics struct {
	TotalSales       float64 `json:"total_sales"`
	TransactionCount int     `json:"transaction_count"`
	AvgBasketSize    float64 `json:"avg_basket_size"`
	GrowthRate       float64 `json:"growth_rate"`
}

// computeKPIs derives the overview metrics. The growth rate compares the
// revenue of the more recent half of the transactions (by timestamp,
// descending) against the older half.
func computeKPIs(enriched []EnrichedTransaction) KPIMetrics {
	kpi := KPIMetrics{TransactionCount: len(enriched)}
	if len(enriched) == 0 {
		return kpi
	}

	for _, et := range enriched {
		kpi.TotalSales += et.TotalAmount
	}
	kpi.AvgBasketSize = round2(kpi.TotalSales / float64(len(enriched)))

	byRecency := make([]EnrichedTransaction, len(enriched))
	copy(byRecency, enriched)
	sort.SliceStable(byRecency, func(i, j int) bool {
		return byRecency[i].Timestamp.After(byRecency[j].Timestamp)
	})

	half := len(byRecency) / 2
	var recent, older float64
	for i, et := range byRecency {
		if i < half {
			recent += et.TotalAmount
		} else {
			older += et.TotalAmount
		}
	}
	if older > 0 {
		kpi.GrowthRate = round2((recent - older) / older * 100)
	}
	return kpi
}

// ProductPerformance is one row of the product ranking.
type ProductPerformance struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Brand            string  `json:"brand"`
	Category         string  `json:"category"`
	Revenue          float64 `json:"revenue"`
	Quantity         float64 `json:"quantity"`
	TransactionCount int     `json:"transaction_count"`
}

// computeProductPerformance groups line items by product and returns the top
// products by revenue.
func computeProductPerformance(enriched []EnrichedTransaction) []ProductPerformance {
	perProduct := make(map[string]*ProductPerformance)

	for _, et := range enriched {
		seen := make(map[string]bool, len(et.Items))
		for _, item := range et.Items {
			pp := perProduct[item.ProductID]
			if pp == nil {
				pp = &ProductPerformance{ProductID: item.ProductID}
				if item.Product != nil {
					pp.ProductName = item.Product.Name
					pp.Category = item.Product.Category
				}
				if item.Brand != nil {
					pp.Brand = item.Brand.Name
				}
				perProduct[item.ProductID] = pp
			}
			pp.Revenue += item.LineTotal
			pp.Quantity += item.Quantity
			if !seen[item.ProductID] {
				pp.TransactionCount++
				seen[item.ProductID] = true
			}
		}
	}

	ranked := make([]ProductPerformance, 0, len(perProduct))
	for _, pp := range perProduct {
		pp.Revenue = round2(pp.Revenue)
		ranked = append(ranked, *pp)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	return ranked
}

// CustomerSegment is one bucket of the spend-based segmentation.
type CustomerSegment struct {
	Segment       string  `json:"segment"`
	CustomerCount int     `json:"customer_count"`
	Share         float64 `json:"share"`
	AvgSpend      float64 `json:"avg_spend"`
}

// ConsumerBehavior is the consumer-behavior aggregate.
type ConsumerBehavior struct {
	CustomerCount int               `json:"customer_count"`
	AvgSpend      float64           `json:"avg_spend"`
	Segments      []CustomerSegment `json:"segments"`
}

// computeConsumerBehavior buckets customers by multiples of the average
// spend: Premium strictly above 2x, Regular strictly above 1x up to and
// including 2x, Occasional at or below 1x.
func computeConsumerBehavior(enriched []EnrichedTransaction) ConsumerBehavior {
	spendByCustomer := make(map[string]float64)
	for _, et := range enriched {
		spendByCustomer[et.CustomerID] += et.TotalAmount
	}

	cb := ConsumerBehavior{CustomerCount: len(spendByCustomer)}
	if cb.CustomerCount == 0 {
		return cb
	}

	var total float64
	for _, spend := range spendByCustomer {
		total += spend
	}
	avg := total / float64(cb.CustomerCount)
	cb.AvgSpend = round2(avg)

	type bucket struct {
		count int
		total float64
	}
	buckets := map[string]*bucket{
		"Premium":    {},
		"Regular":    {},
		"Occasional": {},
	}
	for _, spend := range spendByCustomer {
		var name string
		switch {
		case spend > 2*avg:
			name = "Premium"
		case spend > avg:
			name = "Regular"
		default:
			name = "Occasional"
		}
		b := buckets[name]
		b.count++
		b.total += spend
	}

	for _, name := range []string{"Premium", "Regular", "Occasional"} {
		b := buckets[name]
		seg := CustomerSegment{
			Segment:       name,
			CustomerCount: b.count,
			Share:         round2(float64(b.count) / float64(cb.CustomerCount) * 100),
		}
		if b.count > 0 {
			seg.AvgSpend = round2(b.total / float64(b.count))
		}
		cb.Segments = append(cb.Segments, seg)
	}
	return cb
}

// TrendPoint is one bucket of the daily revenue series.
type TrendPoint struct {
	Date             string  `json:"date"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transaction_count"`
}

// computeTrends buckets revenue by calendar day, ascending.
func computeTrends(enriched []EnrichedTransaction) []TrendPoint {
	byDay := make(map[string]*TrendPoint)
	for _, et := range enriched {
		day := et.Timestamp.Format("2006-01-02")
		tp := byDay[day]
		if tp == nil {
			tp = &TrendPoint{Date: day}
			byDay[day] = tp
		}
		tp.Revenue += et.TotalAmount
		tp.TransactionCount++
	}

	points := make([]TrendPoint, 0, len(byDay))
	for _, tp := range byDay {
		tp.Revenue = round2(tp.Revenue)
		points = append(points, *tp)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// filterOptions returns the distinct values available for one filter type.
func filterOptions(ds dataset, filterType string) []string {
	set := make(map[string]bool)
	switch filterType {
	case "region":
		for _, s := range ds.stores {
			set[s.Region] = true
		}
	case "city":
		for _, s := range ds.stores {
			set[s.City] = true
		}
	case "municipality":
		for _, s := range ds.stores {
			set[s.Municipality] = true
		}
	case "barangay":
		for _, s := range ds.stores {
			set[s.Barangay] = true
		}
	case "holding_company":
		for _, b := range ds.brands {
			set[b.HoldingCompany] = true
		}
	case "client":
		for _, b := range ds.brands {
			set[b.Client] = true
		}
	case "brand":
		for _, b := range ds.brands {
			set[b.Name] = true
		}
	case "category":
		for _, p := range ds.products {
			set[p.Category] = true
		}
	case "sku":
		for _, p := range ds.products {
			set[p.SKU] = true
		}
	}

	delete(set, "")
	options := make([]string, 0, len(set))
	for v := range set {
		options = append(options, v)
	}
	sort.Strings(options)
	return options
}

// filterTypes lists every hierarchy key the options endpoint understands.
var filterTypes = []string{
	"region", "city", "municipality", "barangay",
	"holding_company", "client", "category", "brand", "sku",
}

// filterCounts returns the distinct-value count per filter type.
func filterCounts(ds dataset) map[string]int {
	counts := make(map[string]int, len(filterTypes))
	for _, ft := range filterTypes {
		counts[ft] = len(filterOptions(ds, ft))
	}
	return counts
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
