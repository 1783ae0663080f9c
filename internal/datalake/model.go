package datalake

import (
	"fmt"
	"time"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// Transaction is one raw fact row from transactions.csv.
type Transaction struct {
	ID          string
	CustomerID  string
	StoreID     string
	TotalAmount float64
	Timestamp   time.Time
}

// TransactionItem is one line item from transaction_items.csv.
type TransactionItem struct {
	TransactionID string
	ProductID     string
	Quantity      float64
	LineTotal     float64
}

// Customer is a dimension row from customers.csv.
type Customer struct {
	ID     string
	Name   string
	Region string
	City   string
}

// Store is a dimension row from stores.csv.
type Store struct {
	ID           string
	Name         string
	Region       string
	City         string
	Municipality string
	Barangay     string
}

// Product is a dimension row from products.csv.
type Product struct {
	ID        string
	Name      string
	SKU       string
	Category  string
	BrandID   string
	UnitPrice float64
}

// Brand is a dimension row from brands.csv.
type Brand struct {
	ID             string
	Name           string
	Client         string
	HoldingCompany string
}

// EnrichedItem is a line item with its resolved product and brand attached.
// Product and Brand are nil when the dimension row is missing; a missing
// dimension row is not an error.
type EnrichedItem struct {
	TransactionItem
	Product *Product
	Brand   *Brand
}

// EnrichedTransaction is the joined view all aggregations run over.
type EnrichedTransaction struct {
	Transaction
	Customer *Customer
	Store    *Store
	Items    []EnrichedItem
}

// timestampLayouts are the formats lake exports have been seen to use.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func mapTransactions(records []Record) ([]Transaction, error) {
	out := make([]Transaction, 0, len(records))
	for i, rec := range records {
		ts, err := parseTimestamp(rec.text("transaction_date"))
		if err != nil {
			return nil, &source.ParseError{
				Table:  FileTransactions,
				Line:   i + 1,
				Column: "transaction_date",
				Cause:  err,
			}
		}
		out = append(out, Transaction{
			ID:          rec.text("transaction_id"),
			CustomerID:  rec.text("customer_id"),
			StoreID:     rec.text("store_id"),
			TotalAmount: rec.number("total_amount"),
			Timestamp:   ts,
		})
	}
	return out, nil
}

func mapTransactionItems(records []Record) []TransactionItem {
	out := make([]TransactionItem, 0, len(records))
	for _, rec := range records {
		out = append(out, TransactionItem{
			TransactionID: rec.text("transaction_id"),
			ProductID:     rec.text("product_id"),
			Quantity:      rec.number("quantity"),
			LineTotal:     rec.number("line_total"),
		})
	}
	return out
}

func mapCustomers(records []Record) []Customer {
	out := make([]Customer, 0, len(records))
	for _, rec := range records {
		out = append(out, Customer{
			ID:     rec.text("customer_id"),
			Name:   rec.text("customer_name"),
			Region: rec.text("region"),
			City:   rec.text("city"),
		})
	}
	return out
}

func mapStores(records []Record) []Store {
	out := make([]Store, 0, len(records))
	for _, rec := range records {
		out = append(out, Store{
			ID:           rec.text("store_id"),
			Name:         rec.text("store_name"),
			Region:       rec.text("region"),
			City:         rec.text("city"),
			Municipality: rec.text("municipality"),
			Barangay:     rec.text("barangay"),
		})
	}
	return out
}

func mapProducts(records []Record) []Product {
	out := make([]Product, 0, len(records))
	for _, rec := range records {
		out = append(out, Product{
			ID:        rec.text("product_id"),
			Name:      rec.text("product_name"),
			SKU:       rec.text("sku"),
			Category:  rec.text("category"),
			BrandID:   rec.text("brand_id"),
			UnitPrice: rec.number("unit_price"),
		})
	}
	return out
}

func mapBrands(records []Record) []Brand {
	out := make([]Brand, 0, len(records))
	for _, rec := range records {
		out = append(out, Brand{
			ID:             rec.text("brand_id"),
			Name:           rec.text("brand_name"),
			Client:         rec.text("client"),
			HoldingCompany: rec.text("holding_company"),
		})
	}
	return out
}
