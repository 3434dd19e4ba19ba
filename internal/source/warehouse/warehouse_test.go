package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T, pageSize, batchSize int, m *metrics.Metrics) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, pageSize, batchSize, m), mock
}

func TestQueries(t *testing.T) {
	query, args, err := pageQuery(tableInventory, []string{"id", "stock_number"}, 40, 500)
	require.NoError(t, err)
	require.Equal(t, "SELECT id, stock_number FROM fact_inventory_current WHERE id > $1 ORDER BY id ASC LIMIT 500", query)
	require.Equal(t, []interface{}{int64(40)}, args)

	query, args, err = lookupQuery(tableProducts, "dim_product_skey", productColumns, []int64{7, 9})
	require.NoError(t, err)
	require.Equal(t, "SELECT dim_product_skey, floorplan FROM dim_product WHERE dim_product_skey IN ($1,$2)", query)
	require.Equal(t, []interface{}{int64(7), int64(9)}, args)
}

func TestClient_FetchInventory_KeysetPaging(t *testing.T) {
	m := metrics.New()
	client, mock := newMockClient(t, 2, 100, m)

	first, _, err := pageQuery(tableInventory, inventoryColumns, 0, 2)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(first)).
		WithArgs(int64(0)).
		WillReturnRows(sqlmock.NewRows(inventoryColumns).
			AddRow(int64(1), "A1", 45000.0, "NEW", 12, int64(10), int64(20), int64(30)).
			AddRow(int64(2), "A2", nil, nil, nil, nil, nil, nil))

	second, _, err := pageQuery(tableInventory, inventoryColumns, 2, 2)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(second)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(inventoryColumns).
			AddRow(int64(7), "A7", 19999.5, "USED", 88, int64(11), nil, int64(31)))

	facts, err := client.FetchInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, facts, 3)

	require.Equal(t, "A1", facts[0].StockNumber)
	require.Equal(t, 45000.0, *facts[0].Price)
	require.Equal(t, "NEW", *facts[0].Condition)
	require.Equal(t, 12, *facts[0].DaysOnLot)
	require.Equal(t, int64(10), *facts[0].ProductModelKey)

	require.Nil(t, facts[1].Price)
	require.Nil(t, facts[1].ProductModelKey)

	require.Equal(t, "A7", facts[2].StockNumber)
	require.Nil(t, facts[2].ProductKey)

	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, 2.0, testutil.ToFloat64(
		m.UpstreamRequests.WithLabelValues(Name, "fetch_"+tableInventory, metrics.OutcomeSuccess)))
}

func TestClient_FetchSales_QueryError(t *testing.T) {
	m := metrics.New()
	client, mock := newMockClient(t, 100, 100, m)

	query, _, err := pageQuery(tableSales, salesColumns, 0, 100)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(0)).
		WillReturnError(sql.ErrConnDone)

	_, err = client.FetchSales(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, sql.ErrConnDone))
	require.Contains(t, err.Error(), tableSales)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, 1.0, testutil.ToFloat64(
		m.UpstreamRequests.WithLabelValues(Name, "fetch_"+tableSales, metrics.OutcomeFailure)))
}

func TestClient_ResolveProductModels_Batches(t *testing.T) {
	client, mock := newMockClient(t, 100, 2, nil)

	first, _, err := lookupQuery(tableProductModels, "dim_product_model_skey", productModelColumns, []int64{1, 2})
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(first)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(productModelColumns).
			AddRow(int64(1), "TRAVEL TRAILER", "Grand Design", "Imagine", 2024).
			AddRow(int64(2), "CLASS A", nil, nil, nil))

	second, _, err := lookupQuery(tableProductModels, "dim_product_model_skey", productModelColumns, []int64{3})
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(second)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productModelColumns))

	got, err := client.ResolveProductModels(context.Background(), []int64{3, 1, 2, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Grand Design", *got[1].Manufacturer)
	require.Equal(t, 2024, *got[1].ModelYear)
	require.Nil(t, got[2].Manufacturer)
	require.NotContains(t, got, int64(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ResolveDates(t *testing.T) {
	client, mock := newMockClient(t, 100, 100, nil)

	query, _, err := lookupQuery(tableDates, "dim_date_skey", dateColumns, []int64{20240315})
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(20240315)).
		WillReturnRows(sqlmock.NewRows(dateColumns).
			AddRow(int64(20240315), time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC), "Mar 2024"))

	got, err := client.ResolveDates(context.Background(), []int64{20240315})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got[20240315].Date)
	require.Equal(t, "Mar 2024", *got[20240315].MonthYear)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ResolveDealerships_NoKeys(t *testing.T) {
	client, mock := newMockClient(t, 100, 100, nil)

	got, err := client.ResolveDealerships(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ValidateSchema(t *testing.T) {
	query, _, err := schemaQuery()
	require.NoError(t, err)

	tests := []struct {
		name    string
		tables  []string
		wantErr string
	}{
		{
			name:   "all tables present",
			tables: requiredTables,
		},
		{
			name:    "missing tables are reported",
			tables:  []string{tableInventory, tableProductModels, tableDealerships},
			wantErr: "[fact_inventory_sales dim_product dim_date]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, mock := newMockClient(t, 100, 100, nil)
			rows := sqlmock.NewRows([]string{"table_name"})
			for _, name := range tc.tables {
				rows.AddRow(name)
			}
			mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(rows)

			err := client.ValidateSchema(context.Background())
			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
