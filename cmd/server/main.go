package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitr/splitr/internal/api"
	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/config"
	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
	"github.com/splitr/splitr/internal/storage/sqlite"
	"github.com/splitr/splitr/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.IsProd)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	groups := service.NewGroupService(store)
	expenses := service.NewExpenseService(store)
	settlements := service.NewSettlementService(store)
	dashboard := service.NewDashboardService(store)
	invites := service.NewInviteService(store)

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogging(), middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", api.RegisterHandler(authenticator, jwtManager))
	router.POST("/auth/login", api.LoginHandler(authenticator, jwtManager))

	// Invite preview is public: the landing page renders before login.
	router.GET("/invites", middleware.OptionalAuth(jwtManager), api.GetInviteHandler(invites))

	authed := router.Group("/", middleware.RequireAuth(jwtManager))

	authed.GET("/dashboard/balances", api.BalancesHandler(dashboard))
	authed.GET("/dashboard/total-spent", api.TotalSpentHandler(dashboard))
	authed.GET("/dashboard/monthly-spending", api.MonthlySpendingHandler(dashboard))
	authed.GET("/dashboard/groups", api.UserGroupsHandler(dashboard))

	authed.POST("/groups", api.CreateGroupHandler(groups))
	authed.GET("/groups", api.ListGroupsHandler(groups))
	authed.GET("/groups/:id/expenses", api.GroupExpensesHandler(groups))
	authed.DELETE("/groups/:id", api.DeleteGroupHandler(groups))
	authed.DELETE("/groups/:id/members/:userId", api.RemoveMemberHandler(groups))
	authed.POST("/groups/:id/leave", api.LeaveGroupHandler(groups))

	authed.POST("/expenses", api.CreateExpenseHandler(expenses))
	authed.DELETE("/expenses/:id", api.DeleteExpenseHandler(expenses))
	authed.GET("/person/:id", api.PersonHandler(expenses))

	authed.POST("/settlements", api.CreateSettlementHandler(settlements))
	authed.DELETE("/settlements/:id", api.DeleteSettlementHandler(settlements))

	authed.POST("/invites", api.CreateInviteHandler(invites))
	authed.POST("/invites/redeem", api.RedeemInviteHandler(invites))
	authed.DELETE("/invites/:token", api.RevokeInviteHandler(invites))

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
