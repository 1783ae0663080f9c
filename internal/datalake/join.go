package datalake

// dataset holds one fetch cycle's typed tables. Tables are read-only for the
// lifetime of the cycle.
type dataset struct {
	transactions []Transaction
	items        []TransactionItem
	customers    []Customer
	stores       []Store
	products     []Product
	brands       []Brand
}

// buildEnriched joins the fact tables against every dimension in O(n+m):
// hash maps for the dimension lookups and an item index keyed by transaction
// id instead of a per-transaction scan.
func buildEnriched(ds dataset) []EnrichedTransaction {
	custByID := make(map[string]*Customer, len(ds.customers))
	for i := range ds.customers {
		custByID[ds.customers[i].ID] = &ds.customers[i]
	}
	storeByID := make(map[string]*Store, len(ds.stores))
	for i := range ds.stores {
		storeByID[ds.stores[i].ID] = &ds.stores[i]
	}
	prodByID := make(map[string]*Product, len(ds.products))
	for i := range ds.products {
		prodByID[ds.products[i].ID] = &ds.products[i]
	}
	brandByID := make(map[string]*Brand, len(ds.brands))
	for i := range ds.brands {
		brandByID[ds.brands[i].ID] = &ds.brands[i]
	}

	itemsByTx := make(map[string][]TransactionItem, len(ds.transactions))
	for _, item := range ds.items {
		itemsByTx[item.TransactionID] = append(itemsByTx[item.TransactionID], item)
	}

	enriched := make([]EnrichedTransaction, 0, len(ds.transactions))
	for _, tx := range ds.transactions {
		et := EnrichedTransaction{
			Transaction: tx,
			Customer:    custByID[tx.CustomerID],
			Store:       storeByID[tx.StoreID],
			Items:       make([]EnrichedItem, 0, len(itemsByTx[tx.ID])),
		}
		for _, item := range itemsByTx[tx.ID] {
			ei := EnrichedItem{TransactionItem: item}
			if p := prodByID[item.ProductID]; p != nil {
				ei.Product = p
				ei.Brand = brandByID[p.BrandID]
			}
			et.Items = append(et.Items, ei)
		}
		enriched = append(enriched, et)
	}
	return enriched
}
