package datalake

import (
	"strconv"
	"time"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// applyFilters keeps the transactions matching every active filter.
// Geography matches against the store dimension, organization against any of
// the transaction's items, and time fields against the transaction timestamp.
func applyFilters(enriched []EnrichedTransaction, params source.Params) []EnrichedTransaction {
	if len(params) == 0 {
		return enriched
	}

	out := make([]EnrichedTransaction, 0, len(enriched))
	for _, et := range enriched {
		if matchGeography(et, params) && matchOrganization(et, params) && matchTime(et.Timestamp, params) {
			out = append(out, et)
		}
	}
	return out
}

func matchGeography(et EnrichedTransaction, params source.Params) bool {
	region, hasRegion := params["region"]
	city, hasCity := params["city"]
	municipality, hasMunicipality := params["municipality"]
	barangay, hasBarangay := params["barangay"]
	if !hasRegion && !hasCity && !hasMunicipality && !hasBarangay {
		return true
	}
	if et.Store == nil {
		return false
	}
	if hasRegion && et.Store.Region != region {
		return false
	}
	if hasCity && et.Store.City != city {
		return false
	}
	if hasMunicipality && et.Store.Municipality != municipality {
		return false
	}
	if hasBarangay && et.Store.Barangay != barangay {
		return false
	}
	return true
}

// matchOrganization accepts a transaction when at least one line item
// satisfies all active organization filters.
func matchOrganization(et EnrichedTransaction, params source.Params) bool {
	holding, hasHolding := params["holding_company"]
	client, hasClient := params["client"]
	category, hasCategory := params["category"]
	brand, hasBrand := params["brand"]
	sku, hasSKU := params["sku"]
	if !hasHolding && !hasClient && !hasCategory && !hasBrand && !hasSKU {
		return true
	}

	for _, item := range et.Items {
		if hasCategory && (item.Product == nil || item.Product.Category != category) {
			continue
		}
		if hasSKU && (item.Product == nil || item.Product.SKU != sku) {
			continue
		}
		if hasBrand && (item.Brand == nil || item.Brand.Name != brand) {
			continue
		}
		if hasClient && (item.Brand == nil || item.Brand.Client != client) {
			continue
		}
		if hasHolding && (item.Brand == nil || item.Brand.HoldingCompany != holding) {
			continue
		}
		return true
	}
	return false
}

func matchTime(ts time.Time, params source.Params) bool {
	if v, ok := intParam(params, "year"); ok && ts.Year() != v {
		return false
	}
	if v, ok := intParam(params, "quarter"); ok && (int(ts.Month())-1)/3+1 != v {
		return false
	}
	if v, ok := intParam(params, "month"); ok && int(ts.Month()) != v {
		return false
	}
	if v, ok := intParam(params, "week"); ok {
		_, week := ts.ISOWeek()
		if week != v {
			return false
		}
	}
	if v, ok := intParam(params, "day"); ok && ts.Day() != v {
		return false
	}
	if v, ok := intParam(params, "hour"); ok && ts.Hour() != v {
		return false
	}
	return true
}

func intParam(params source.Params, key string) (int, bool) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
