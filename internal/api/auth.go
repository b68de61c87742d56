package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/auth"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new account and returns a session token.
func RegisterHandler(authenticator auth.Authenticator, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := authenticator.Register(c.Request.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrWeakPassword):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, auth.ErrEmailExists):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				writeError(c, err)
			}
			return
		}

		token, err := jwtManager.Generate(user)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user":  gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
		})
	}
}

// LoginHandler authenticates credentials and returns a session token.
func LoginHandler(authenticator auth.Authenticator, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
			return
		}

		token, err := jwtManager.Generate(user)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
		})
	}
}
