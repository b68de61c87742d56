package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/service"
)

// CreateExpenseRequest is the expense creation payload. Percentages and
// Amounts carry the per-participant overrides for the percentage and
// exact split modes.
type CreateExpenseRequest struct {
	Description  string             `json:"description" binding:"required"`
	Amount       float64            `json:"amount" binding:"required,gt=0"`
	Category     string             `json:"category"`
	Date         int64              `json:"date"`
	PaidByUserID string             `json:"paidByUserId" binding:"required"`
	SplitType    string             `json:"splitType" binding:"required,oneof=equal percentage exact"`
	Participants []string           `json:"participants" binding:"required,min=1"`
	Percentages  map[string]float64 `json:"percentages"`
	Amounts      map[string]float64 `json:"amounts"`
	GroupID      string             `json:"groupId"`
}

// CreateExpenseHandler computes splits and persists an expense. The
// response surfaces any split-total mismatch for the client to display.
func CreateExpenseHandler(expenses *service.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		result, err := expenses.CreateExpense(c.Request.Context(), middleware.UserID(c), service.CreateExpenseInput{
			Description:  req.Description,
			Amount:       req.Amount,
			Category:     req.Category,
			Date:         req.Date,
			PaidByUserID: req.PaidByUserID,
			SplitType:    models.SplitType(req.SplitType),
			Participants: req.Participants,
			Percentages:  req.Percentages,
			Amounts:      req.Amounts,
			GroupID:      req.GroupID,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"expense":  result.Expense,
			"mismatch": result.Mismatch,
		})
	}
}

// DeleteExpenseHandler deletes an expense. Payer or creator only.
func DeleteExpenseHandler(expenses *service.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := expenses.DeleteExpense(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}

// PersonHandler returns the 1-to-1 view against one counterparty.
func PersonHandler(expenses *service.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := expenses.GetExpensesBetweenUsers(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
