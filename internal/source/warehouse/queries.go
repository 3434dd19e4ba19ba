package warehouse

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	tableInventory     = "fact_inventory_current"
	tableSales         = "fact_inventory_sales"
	tableProductModels = "dim_product_model"
	tableProducts      = "dim_product"
	tableDealerships   = "dim_dealership"
	tableDates         = "dim_date"
)

// requiredTables must exist before the client will serve a build.
var requiredTables = []string{
	tableInventory,
	tableSales,
	tableProductModels,
	tableProducts,
	tableDealerships,
	tableDates,
}

var (
	inventoryColumns = []string{
		"id", "stock_number", "price", "condition", "days_on_lot",
		"dim_product_model_skey", "dim_product_skey", "dim_dealership_skey",
	}
	salesColumns = []string{
		"id", "stock_number", "price", "condition", "days_to_sell",
		"dim_product_model_skey", "dim_product_skey", "dim_dealership_skey", "sold_date_skey",
	}
	productModelColumns = []string{"dim_product_model_skey", "rv_type", "manufacturer", "model", "model_year"}
	productColumns      = []string{"dim_product_skey", "floorplan"}
	dealershipColumns   = []string{"dim_dealership_skey", "dealership", "dealer_group", "state", "region", "city", "county"}
	dateColumns         = []string{"dim_date_skey", "calendar_date", "month_year"}
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// pageQuery selects the next page of a fact table after cursor, in id order.
// Keyset paging keeps pages stable while the table is being appended to.
func pageQuery(table string, columns []string, cursor int64, limit int) (string, []interface{}, error) {
	return psql.
		Select(columns...).
		From(table).
		Where(sq.Gt{"id": cursor}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
}

// lookupQuery selects dimension rows whose key is in keys.
func lookupQuery(table, keyColumn string, columns []string, keys []int64) (string, []interface{}, error) {
	return psql.
		Select(columns...).
		From(table).
		Where(sq.Eq{keyColumn: keys}).
		ToSql()
}

// schemaQuery lists which of the required tables exist in the current schema.
func schemaQuery() (string, []interface{}, error) {
	return psql.
		Select("table_name").
		From("information_schema.tables").
		Where(sq.Expr("table_schema = current_schema()")).
		Where(sq.Eq{"table_name": requiredTables}).
		ToSql()
}
