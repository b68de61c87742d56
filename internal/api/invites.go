package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
)

// CreateInviteRequest is the invite creation payload. Zero maxUses means
// unlimited; zero expiresInHours means no time limit.
type CreateInviteRequest struct {
	GroupID        string `json:"groupId" binding:"required"`
	MaxUses        int    `json:"maxUses" binding:"gte=0"`
	ExpiresInHours int    `json:"expiresInHours" binding:"gte=0"`
}

// CreateInviteHandler creates an invite link and code for a group.
func CreateInviteHandler(invites *service.InviteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		created, err := invites.CreateInvite(c.Request.Context(), middleware.UserID(c), service.CreateInviteInput{
			TargetID:       req.GroupID,
			MaxUses:        req.MaxUses,
			ExpiresInHours: req.ExpiresInHours,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetInviteHandler previews an invite by ?token= or ?code=. Public: invalid
// or missing invites answer {valid: false} rather than an error status.
func GetInviteHandler(invites *service.InviteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		code := c.Query("code")
		if token == "" && code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token or code required"})
			return
		}

		preview, err := invites.GetInvite(c.Request.Context(), token, code)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}

// RedeemInviteRequest accepts either a token or a short code.
type RedeemInviteRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// RedeemInviteHandler joins the calling user to the invite's group.
func RedeemInviteHandler(invites *service.InviteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RedeemInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.Token == "" && req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token or code required"})
			return
		}

		result, err := invites.RedeemInvite(c.Request.Context(), middleware.UserID(c), req.Token, req.Code)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// RevokeInviteHandler revokes an active invite by token.
func RevokeInviteHandler(invites *service.InviteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := invites.RevokeInvite(c.Request.Context(), middleware.UserID(c), c.Param("token")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}
