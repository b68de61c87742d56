package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
)

// CreateGroupRequest is the group creation payload.
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"memberIds"`
}

// CreateGroupHandler creates a group with the caller as admin.
func CreateGroupHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		group, err := groups.CreateGroup(c.Request.Context(), middleware.UserID(c), req.Name, req.Description, req.MemberIDs)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"group": group})
	}
}

// ListGroupsHandler lists the caller's groups; ?selected=<id> also returns
// member details for that group.
func ListGroupsHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := groups.ListGroups(c.Request.Context(), middleware.UserID(c), c.Query("selected"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GroupExpensesHandler returns the full group view: records, netted
// balances and member lookup map.
func GroupExpensesHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := groups.GetGroupExpenses(c.Request.Context(), c.Param("id"), middleware.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// DeleteGroupHandler deletes a group and its records. Admin only.
func DeleteGroupHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := groups.DeleteGroup(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}

// RemoveMemberHandler removes a member from a group. Admin only.
func RemoveMemberHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := groups.RemoveMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}

// LeaveGroupHandler removes the caller from a group.
func LeaveGroupHandler(groups *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := groups.LeaveGroup(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}
