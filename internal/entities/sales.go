package entities

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar day key format used by the sales ledger.
const DateLayout = "2006-01-02"

type SalesMode string

const (
	// SalesModeReplace sets the day's total to the uploaded sheet's total.
	SalesModeReplace SalesMode = "replace"
	// SalesModeAdd adds the uploaded sheet's total to the day's existing total.
	SalesModeAdd SalesMode = "add"
)

// Valid reports whether m is a known sales mode.
func (m SalesMode) Valid() bool {
	return m == SalesModeReplace || m == SalesModeAdd
}

// DailySalesEntry holds the sales totals and goals for one calendar day.
type DailySalesEntry struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	MinGoal     decimal.Decimal `json:"min_goal"`
	SuperGoal   decimal.Decimal `json:"super_goal"`
	ActualSales decimal.Decimal `json:"actual_sales"`
}

// MinGoalReached reports whether actual sales met the minimum goal.
func (e DailySalesEntry) MinGoalReached() bool {
	return e.MinGoal.IsPositive() && e.ActualSales.GreaterThanOrEqual(e.MinGoal)
}

// SuperGoalReached reports whether actual sales met the stretch goal.
func (e DailySalesEntry) SuperGoalReached() bool {
	return e.SuperGoal.IsPositive() && e.ActualSales.GreaterThanOrEqual(e.SuperGoal)
}
