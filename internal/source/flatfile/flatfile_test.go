package flatfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"github.com/smallbiznis/storepulse/internal/source/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls map[string]error
}

func (r *recordingObserver) ObserveSourceFetch(_ string, resource string, _ time.Duration, err error) {
	if r.calls == nil {
		r.calls = map[string]error{}
	}
	r.calls[resource] = err
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadReadsAndGroupsOrders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProductsFile, "ID,Title,Category,Price,Units_Sold,Revenue,extra\n"+
		"1,Mug,Kitchen,12.50,4,50,ignored\n"+
		"2,Lamp,,not-a-number,,,\n")
	writeFile(t, dir, OrdersFile, "order_id,date,product,quantity,price,amount\n"+
		"A1,2025-08-01,Mug,2,12.50,999\n"+
		"A1,2025-08-01,Lamp,1,40,40\n"+
		"B2,garbage,Mug,1,12.50,12.50\n")
	writeFile(t, dir, CustomersFile, "id,name,email,orders,first_order\n"+
		"c1,Ana,ana@example.com,3,2025-06-01\n")

	obs := &recordingObserver{}
	res := New(dir, nil, obs).Load(context.Background(), domain.Request{Kind: domain.KindFlatFile})

	assert.Empty(t, res.Warnings)
	require.Len(t, res.Tables.Products, 2)
	assert.True(t, res.Tables.Products[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(4), res.Tables.Products[0].RecordedUnits)
	assert.True(t, res.Tables.Products[1].UnitPrice.IsZero())
	assert.Equal(t, "", res.Tables.Products[1].Category)

	require.Len(t, res.Tables.Orders, 2)
	first := res.Tables.Orders[0]
	assert.Equal(t, "A1", first.OrderID)
	require.Len(t, first.LineItems, 2)
	// amount column is recomputed from quantity and price
	assert.True(t, first.LineItems[0].LineAmount.Equal(decimal.NewFromInt(25)))
	assert.True(t, first.Total().Equal(decimal.NewFromInt(65)))
	assert.True(t, res.Tables.Orders[1].PlacedAt.IsZero())

	require.Len(t, res.Tables.Customers, 1)
	assert.Equal(t, int64(3), res.Tables.Customers[0].LifetimeOrderCount)
	assert.Equal(t, "2025-06-01", res.Tables.Customers[0].FirstOrderAt.Format(time.DateOnly))

	assert.Len(t, obs.calls, 3)
	for resource, err := range obs.calls {
		assert.NoError(t, err, resource)
	}
}

func TestLoadMissingFileDegradesToWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProductsFile, "id,title,category,price,units_sold,revenue\n1,Mug,Kitchen,10,1,10\n")

	res := New(dir, nil, nil).Load(context.Background(), domain.Request{})

	assert.Len(t, res.Tables.Products, 1)
	assert.NotNil(t, res.Tables.Orders)
	assert.Empty(t, res.Tables.Orders)
	assert.NotNil(t, res.Tables.Customers)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, domain.ResourceOrders, res.Warnings[0].Resource)
	assert.Equal(t, domain.ResourceCustomers, res.Warnings[1].Resource)
	assert.ErrorContains(t, res.Err(), "resource_missing")
}

func TestSeedRoundTripsAndNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	tables := static.Tables()

	report, err := Seed(dir, tables)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ProductsFile, OrdersFile, CustomersFile}, report.Written)

	res := New(dir, nil, nil).Load(context.Background(), domain.Request{})
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Tables.Products, len(tables.Products))
	assert.Len(t, res.Tables.Orders, len(tables.Orders))
	assert.Len(t, res.Tables.Customers, len(tables.Customers))
	assert.Equal(t, tables.Orders[0].PlacedAt, res.Tables.Orders[0].PlacedAt)

	custom := "id,title,category,price,units_sold,revenue\n9,Custom,X,1,1,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProductsFile), []byte(custom), 0o644))

	report, err = Seed(dir, tables)
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Len(t, report.Skipped, 3)

	body, err := os.ReadFile(filepath.Join(dir, ProductsFile))
	require.NoError(t, err)
	assert.Equal(t, custom, string(body))
}

func TestParseDate(t *testing.T) {
	assert.True(t, ParseDate("").IsZero())
	assert.True(t, ParseDate("08/01/2025").IsZero())
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), ParseDate("2025-08-01"))
	assert.Equal(t, time.Date(2025, 8, 1, 7, 0, 0, 0, time.UTC), ParseDate("2025-08-01T09:00:00+02:00"))
}
