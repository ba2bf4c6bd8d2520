package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// SalesLedger is what the sales endpoints need from the inventory service.
type SalesLedger interface {
	Ledger(ctx context.Context, from, to string) ([]entities.DailySalesEntry, error)
	SetGoals(ctx context.Context, date string, minGoal, superGoal decimal.Decimal) (entities.DailySalesEntry, error)
}

// SalesController serves the daily sales ledger.
type SalesController struct {
	ledger SalesLedger
}

func NewSalesController(ledger SalesLedger) *SalesController {
	return &SalesController{ledger: ledger}
}

// DaySummary is one ledger entry with its goal status.
type DaySummary struct {
	entities.DailySalesEntry
	MinGoalReached   bool `json:"min_goal_reached"`
	SuperGoalReached bool `json:"super_goal_reached"`
}

// GoalsRequest is the body of PUT /api/sales/:date/goals.
type GoalsRequest struct {
	MinGoal   decimal.Decimal `json:"min_goal"`
	SuperGoal decimal.Decimal `json:"super_goal"`
}

// GetLedger handles GET /api/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
// Both bounds are inclusive and optional.
func (sc *SalesController) GetLedger(c *gin.Context) {
	entries, err := sc.ledger.Ledger(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondImportError(c, err, "read ledger")
		return
	}

	days := make([]DaySummary, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		days = append(days, summarize(e))
		total = total.Add(e.ActualSales)
	}

	c.JSON(http.StatusOK, gin.H{
		"days":        days,
		"count":       len(days),
		"total_sales": total.StringFixed(2),
	})
}

// SetGoals handles PUT /api/sales/:date/goals
func (sc *SalesController) SetGoals(c *gin.Context) {
	var req GoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	entry, err := sc.ledger.SetGoals(c.Request.Context(), c.Param("date"), req.MinGoal, req.SuperGoal)
	if err != nil {
		respondImportError(c, err, "set goals")
		return
	}
	c.JSON(http.StatusOK, summarize(entry))
}

func summarize(e entities.DailySalesEntry) DaySummary {
	return DaySummary{
		DailySalesEntry:  e,
		MinGoalReached:   e.MinGoalReached(),
		SuperGoalReached: e.SuperGoalReached(),
	}
}
