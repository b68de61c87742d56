package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
)

// BalancesHandler returns the caller's 1-to-1 balance summary.
func BalancesHandler(dashboard *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		balances, err := dashboard.GetUserBalances(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, balances)
	}
}

// TotalSpentHandler returns the caller's own spending total for a year
// (default: the current year).
func TotalSpentHandler(dashboard *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := dashboard.GetTotalSpent(c.Request.Context(), middleware.UserID(c), yearParam(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalSpent": total})
	}
}

// MonthlySpendingHandler returns the caller's spending bucketed by month.
func MonthlySpendingHandler(dashboard *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		months, err := dashboard.GetMonthlySpending(c.Request.Context(), middleware.UserID(c), yearParam(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"months": months})
	}
}

// UserGroupsHandler returns the caller's groups with per-group balances.
func UserGroupsHandler(dashboard *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := dashboard.GetUserGroups(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"groups": groups})
	}
}

func yearParam(c *gin.Context) int {
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 {
		return y
	}
	return time.Now().Year()
}
