package datalake

// ColumnKind is the declared type of a table column. Cells are validated
// against it at parse time instead of being sniffed per cell.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
)

// Column is one declared table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Schema declares the expected layout of one lake table.
type Schema struct {
	Table   string
	Columns []Column
}

func (s Schema) column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Record is one parsed row: column name → string or float64, decided by the
// declared column kind.
type Record map[string]interface{}

func (r Record) text(name string) string {
	v, _ := r[name].(string)
	return v
}

func (r Record) number(name string) float64 {
	v, _ := r[name].(float64)
	return v
}

// The six normalized lake tables.
const (
	FileTransactions     = "transactions.csv"
	FileTransactionItems = "transaction_items.csv"
	FileCustomers        = "customers.csv"
	FileStores           = "stores.csv"
	FileProducts         = "products.csv"
	FileBrands           = "brands.csv"
)

var (
	transactionsSchema = Schema{
		Table: FileTransactions,
		Columns: []Column{
			{Name: "transaction_id", Kind: KindText},
			{Name: "customer_id", Kind: KindText},
			{Name: "store_id", Kind: KindText},
			{Name: "total_amount", Kind: KindNumber},
			{Name: "transaction_date", Kind: KindText},
		},
	}

	transactionItemsSchema = Schema{
		Table: FileTransactionItems,
		Columns: []Column{
			{Name: "transaction_id", Kind: KindText},
			{Name: "product_id", Kind: KindText},
			{Name: "quantity", Kind: KindNumber},
			{Name: "line_total", Kind: KindNumber},
		},
	}

	customersSchema = Schema{
		Table: FileCustomers,
		Columns: []Column{
			{Name: "customer_id", Kind: KindText},
			{Name: "customer_name", Kind: KindText},
			{Name: "region", Kind: KindText},
			{Name: "city", Kind: KindText},
		},
	}

	storesSchema = Schema{
		Table: FileStores,
		Columns: []Column{
			{Name: "store_id", Kind: KindText},
			{Name: "store_name", Kind: KindText},
			{Name: "region", Kind: KindText},
			{Name: "city", Kind: KindText},
			{Name: "municipality", Kind: KindText},
			{Name: "barangay", Kind: KindText},
		},
	}

	productsSchema = Schema{
		Table: FileProducts,
		Columns: []Column{
			{Name: "product_id", Kind: KindText},
			{Name: "product_name", Kind: KindText},
			{Name: "sku", Kind: KindText},
			{Name: "category", Kind: KindText},
			{Name: "brand_id", Kind: KindText},
			{Name: "unit_price", Kind: KindNumber},
		},
	}

	brandsSchema = Schema{
		Table: FileBrands,
		Columns: []Column{
			{Name: "brand_id", Kind: KindText},
			{Name: "brand_name", Kind: KindText},
			{Name: "client", Kind: KindText},
			{Name: "holding_company", Kind: KindText},
		},
	}

	// schemas indexes every declared table by filename.
	schemas = map[string]Schema{
		FileTransactions:     transactionsSchema,
		FileTransactionItems: transactionItemsSchema,
		FileCustomers:        customersSchema,
		FileStores:           storesSchema,
		FileProducts:         productsSchema,
		FileBrands:           brandsSchema,
	}
)
