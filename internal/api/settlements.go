package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
)

// CreateSettlementRequest is the settlement recording payload.
type CreateSettlementRequest struct {
	Amount            float64  `json:"amount" binding:"required,gt=0"`
	Note              string   `json:"note"`
	Date              int64    `json:"date"`
	PaidByUserID      string   `json:"paidByUserId" binding:"required"`
	ReceivedByUserID  string   `json:"receivedByUserId" binding:"required"`
	GroupID           string   `json:"groupId"`
	RelatedExpenseIDs []string `json:"relatedExpenseIds"`
}

// CreateSettlementHandler records a payment between two users.
func CreateSettlementHandler(settlements *service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSettlementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		settlement, err := settlements.CreateSettlement(c.Request.Context(), middleware.UserID(c), service.CreateSettlementInput{
			Amount:            req.Amount,
			Note:              req.Note,
			Date:              req.Date,
			PaidByUserID:      req.PaidByUserID,
			ReceivedByUserID:  req.ReceivedByUserID,
			GroupID:           req.GroupID,
			RelatedExpenseIDs: req.RelatedExpenseIDs,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"settlement": settlement})
	}
}

// DeleteSettlementHandler deletes a settlement. Payer or creator only.
func DeleteSettlementHandler(settlements *service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := settlements.DeleteSettlement(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}
