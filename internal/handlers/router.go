package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/middleware"
	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

// Services bundles everything the HTTP layer talks to.
type Services struct {
	Store       services.Store
	Tokens      *services.TokenService
	Auth        *services.AuthService
	Ledger      *services.LedgerService
	Roulette    *services.RouletteEngine
	Chat        *services.ChatService
	Leaderboard *services.LeaderboardService
	Admin       *services.AdminService
	Plinko      *services.PlinkoService
	Hub         *WebSocketHub
}

func NewRouter(s Services) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Ledger, s.Plinko)
	rouletteHandler := NewRouletteHandler(s.Roulette)
	chatHandler := NewChatHandler(s.Chat)
	leaderboardHandler := NewLeaderboardHandler(s.Leaderboard)
	adminHandler := NewAdminHandler(s.Admin, s.Tokens, s.Store)

	requireAuth := middleware.AuthMiddleware(s.Tokens)
	optionalAuth := middleware.OptionalAuth(s.Tokens)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/roulette/round", optionalAuth, rouletteHandler.GetRound)
		api.GET("/roulette/winners", rouletteHandler.GetWinners)
		api.GET("/roulette/all-bets", rouletteHandler.GetAllBets)

		api.GET("/chat", chatHandler.GetMessages)
		api.GET("/plinko/stats", userHandler.PlinkoStats)

		api.GET("/leaderboard/:type", leaderboardHandler.GetTop)
		api.GET("/leaderboard/:type/user/:slug", leaderboardHandler.GetUser)
		api.GET("/user/:slug/profile", leaderboardHandler.GetProfile)

		api.POST("/admin/reset", adminHandler.Reset)

		if s.Hub != nil {
			wsHandler := NewWebSocketHandler(s.Hub, s.Roulette)
			api.GET("/ws", optionalAuth, wsHandler.HandleWebSocket)
		}
	}

	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/user/stats", userHandler.GetStats)
		protected.POST("/user/update-stats", userHandler.UpdateStats)
		protected.POST("/user/place-bet", userHandler.PlaceBet)
		protected.POST("/user/win", userHandler.Win)
		protected.POST("/user/refund", userHandler.Refund)
		protected.POST("/user/click-earnings", userHandler.ClickEarnings)
		protected.POST("/user/accept-chat-rules", userHandler.AcceptChatRules)
		protected.POST("/plinko/risk-level", userHandler.SetRiskLevel)
		protected.POST("/plinko-land", userHandler.PlinkoLand)

		protected.POST("/roulette/bet", rouletteHandler.PlaceBet)
		protected.POST("/roulette/clear-bets", rouletteHandler.ClearBets)

		protected.POST("/chat", chatHandler.PostMessage)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(s.Store, models.Role.CanAccessAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/users/:username", adminHandler.GetUser)
		admin.POST("/users/:username/role", adminHandler.SetRole)
		admin.POST("/users/:username/adjust", adminHandler.Adjust)
		admin.POST("/users/:username/mute", adminHandler.Mute)
		admin.GET("/users/:username/chat-logs", adminHandler.ChatLogs)
		admin.GET("/logs", adminHandler.Logs)
	}

	return router
}
