package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testCatalog() []entities.CatalogItem {
	return []entities.CatalogItem{
		{ID: "a", ISBN: "9788535914849", Title: "Dom Casmurro", Price: dec("49.90"), StockCount: 3},
		{ID: "b", ISBN: "9788573210452", Title: "Iracema", Price: dec("20.00"), StockCount: 1},
	}
}

func TestApplyDailySales_ReplaceVsAdd(t *testing.T) {
	existing := []entities.DailySalesEntry{
		{Date: "2024-05-10", MinGoal: dec("100"), ActualSales: dec("300")},
	}
	candidates := []entities.CandidateRecord{
		{ISBN: "9788535914849", Quantity: 1, Price: decPtr("49.90")},
	}

	replaced, err := ApplyDailySales(SalesInput{
		Ledger: existing, Catalog: testCatalog(), Candidates: candidates,
		Date: "2024-05-10", Mode: entities.SalesModeReplace,
	})
	require.NoError(t, err)
	entry, ok := Entry(replaced.Ledger, "2024-05-10")
	require.True(t, ok)
	assert.True(t, entry.ActualSales.Equal(dec("49.90")))
	assert.True(t, entry.MinGoal.Equal(dec("100")), "goals survive a sales upload")

	added, err := ApplyDailySales(SalesInput{
		Ledger: existing, Catalog: testCatalog(), Candidates: candidates,
		Date: "2024-05-10", Mode: entities.SalesModeAdd,
	})
	require.NoError(t, err)
	entry, _ = Entry(added.Ledger, "2024-05-10")
	assert.True(t, entry.ActualSales.Equal(dec("349.90")))

	assert.True(t, existing[0].ActualSales.Equal(dec("300")), "input ledger is not modified")
}

func TestApplyDailySales_StockFloor(t *testing.T) {
	catalog := testCatalog()

	out, err := ApplyDailySales(SalesInput{
		Catalog:    catalog,
		Candidates: []entities.CandidateRecord{{ISBN: "9788573210452", Quantity: 5}},
		Date:       "2024-05-10",
		Mode:       entities.SalesModeReplace,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Catalog[1].StockCount)
	assert.Equal(t, 1, out.Report.StockSubtracted, "only units in stock are removed")
	assert.Equal(t, 1, catalog[1].StockCount, "input catalog is not modified")
	assert.True(t, out.Report.TotalValue.Equal(dec("100.00")), "catalog price times quantity")
}

func TestApplyDailySales_LineValues(t *testing.T) {
	out, err := ApplyDailySales(SalesInput{
		Catalog: testCatalog(),
		Candidates: []entities.CandidateRecord{
			{ISBN: "9788535914849", Quantity: 2, Price: decPtr("45.00")},
			{ISBN: "978-85-7321-045-2", Quantity: 1},
			{ISBN: "9780000000001", Quantity: 4},
			{ISBN: "9780000000002", Quantity: 3, Price: decPtr("15.00")},
			{ISBN: "9788535914849", Quantity: 1, Price: decPtr("49.90"), LineTotal: decPtr("40.00")},
			{ISBN: "9788535914849", Quantity: 0, Price: decPtr("999")},
		},
		Date: "2024-05-11",
		Mode: entities.SalesModeReplace,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, out.Report.ItemsUpdated)
	assert.Equal(t, 2, out.Report.Unmatched)
	assert.Equal(t, 4, out.Report.StockSubtracted)
	// 2 x 45.00 from the sheet, 1 x 20.00 from the catalog, 0 unknown,
	// 3 x 15.00 from the sheet, 40.00 line total.
	assert.True(t, out.Report.TotalValue.Equal(dec("195.00")), "got %s", out.Report.TotalValue)
	assert.Equal(t, 0, out.Catalog[0].StockCount)
	assert.Equal(t, 0, out.Catalog[1].StockCount)

	entry, ok := Entry(out.Ledger, "2024-05-11")
	require.True(t, ok)
	assert.True(t, entry.ActualSales.Equal(dec("195.00")))
}

func TestApplyDailySales_UnitPriceColumnMatchesCatalogPrice(t *testing.T) {
	catalog := []entities.CatalogItem{
		{ID: "a", ISBN: "9788535914849", Title: "Dom Casmurro", Price: dec("10.00"), StockCount: 5},
	}

	totalFor := func(rows ...[]string) decimal.Decimal {
		t.Helper()
		parsed, err := importers.Parse(&importers.Sheet{Rows: rows}, importers.ModeSales)
		require.NoError(t, err)
		out, err := ApplyDailySales(SalesInput{
			Catalog:    catalog,
			Candidates: parsed.Candidates,
			Date:       "2024-05-13",
			Mode:       entities.SalesModeReplace,
		})
		require.NoError(t, err)
		return out.Report.TotalValue
	}

	withPrice := totalFor(
		[]string{"ISBN", "Quantidade", "Preço Unitário"},
		[]string{"9788535914849", "3", "10,00"},
	)
	withoutPrice := totalFor(
		[]string{"ISBN", "Quantidade"},
		[]string{"9788535914849", "3"},
	)
	withTotal := totalFor(
		[]string{"ISBN", "Quantidade", "Preço Unitário", "Valor Total"},
		[]string{"9788535914849", "3", "10,00", "27,00"},
	)

	assert.True(t, withPrice.Equal(dec("30")), "got %s", withPrice)
	assert.True(t, withoutPrice.Equal(dec("30")), "got %s", withoutPrice)
	assert.True(t, withTotal.Equal(dec("27")), "line total wins over unit price, got %s", withTotal)
}

func TestApplyDailySales_CreatesEntryOnce(t *testing.T) {
	input := SalesInput{
		Catalog:    testCatalog(),
		Candidates: []entities.CandidateRecord{{ISBN: "9788535914849", Quantity: 1}},
		Date:       "2024-05-12",
		Mode:       entities.SalesModeAdd,
	}

	first, err := ApplyDailySales(input)
	require.NoError(t, err)
	input.Ledger = first.Ledger
	second, err := ApplyDailySales(input)
	require.NoError(t, err)

	require.Len(t, second.Ledger, 1)
	assert.True(t, second.Ledger[0].ActualSales.Equal(dec("99.80")))
}

func TestApplyDailySales_Validation(t *testing.T) {
	_, err := ApplyDailySales(SalesInput{Date: "10/05/2024", Mode: entities.SalesModeAdd})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ApplyDailySales(SalesInput{Date: "2024-05-10", Mode: "merge"})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestSetGoals(t *testing.T) {
	ledger := []entities.DailySalesEntry{
		{Date: "2024-05-10", ActualSales: dec("250")},
	}

	updated, err := SetGoals(ledger, "2024-05-10", dec("200"), dec("500"))
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.True(t, updated[0].ActualSales.Equal(dec("250")))
	assert.True(t, updated[0].MinGoalReached())
	assert.False(t, updated[0].SuperGoalReached())
	assert.True(t, ledger[0].MinGoal.IsZero(), "input ledger is not modified")

	created, err := SetGoals(updated, "2024-05-11", dec("100"), dec("300"))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.True(t, created[1].ActualSales.IsZero())

	_, err = SetGoals(ledger, "2024-05-10", dec("-1"), dec("0"))
	assert.ErrorIs(t, err, ErrInvalidGoal)

	_, err = SetGoals(ledger, "2024-13-01", dec("1"), dec("2"))
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBetween(t *testing.T) {
	ledger := []entities.DailySalesEntry{
		{Date: "2024-05-12"}, {Date: "2024-05-10"}, {Date: "2024-05-11"},
	}

	got := Between(ledger, "2024-05-11", "")
	require.Len(t, got, 2)
	assert.Equal(t, "2024-05-11", got[0].Date)
	assert.Equal(t, "2024-05-12", got[1].Date)

	assert.Len(t, Between(ledger, "", ""), 3)
}
