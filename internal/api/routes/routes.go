package routes

import (
	"log/slog"
	"time"

	"gigwork-service/internal/adapters/database"
	"gigwork-service/internal/api/middleware"
	"gigwork-service/internal/auth"
	"gigwork-service/internal/cache"
	"gigwork-service/internal/chat"
	"gigwork-service/internal/contract"
	"gigwork-service/internal/gig"
	"gigwork-service/internal/portfolio"
	"gigwork-service/internal/user"
	"gigwork-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	engine *gin.Engine

	gigHandler       *gig.GigHandler
	contractHandler  *contract.ContractHandler
	portfolioHandler *portfolio.PortfolioHandler
	userHandler      *user.UserHandler
	chatHandler      *chat.ChatHandler
	wsHandler        *ws.Handler

	authMW      *middleware.AuthMiddleware
	rateLimitMW *middleware.RateLimitMiddleware
}

func NewRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	minioClient *database.MinIOClient,
	events chat.EventPublisher,
	verifier *auth.Verifier,
	allowedOrigins []string,
	logger *slog.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(allowedOrigins))
	engine.Use(middleware.RequestLogger())

	redisCache := cache.New(redisClient)

	gigRepo := gig.NewGigRepository(db)
	contractRepo := contract.NewContractRepository(db)
	portfolioRepo := portfolio.NewPortfolioRepository(db)
	userRepo := user.NewUserRepository(db)
	chatRepo := chat.NewChatRepository(db)

	gigService := gig.NewGigService(gigRepo, redisCache, minioClient, logger)
	contractService := contract.NewContractService(contractRepo, gigRepo)
	portfolioService := portfolio.NewPortfolioService(portfolioRepo, redisCache, minioClient, logger)
	userService := user.NewUserService(userRepo, redisCache, logger)
	chatService := chat.NewChatService(chatRepo, contractService, gigRepo, userService, redisCache, events, logger)

	hub := ws.NewHub(logger)

	return &Router{
		engine:           engine,
		gigHandler:       gig.NewGigHandler(gigService),
		contractHandler:  contract.NewContractHandler(contractService),
		portfolioHandler: portfolio.NewPortfolioHandler(portfolioService),
		userHandler:      user.NewUserHandler(userService),
		chatHandler:      chat.NewChatHandler(chatService),
		wsHandler:        ws.NewHandler(hub, chatService, verifier, contractService, logger),
		authMW:           middleware.NewAuthMiddleware(verifier, userService),
		rateLimitMW:      middleware.NewRateLimitMiddleware(redisCache),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// The websocket endpoint authenticates inside the handler: browsers
	// cannot set headers on websocket dials, so the token rides the query
	// string.
	api.GET("/chat/ws/:contractId", r.wsHandler.HandleChatWS)

	// Public reads, rate limited by IP.
	public := api.Group("/")
	public.Use(r.rateLimitMW.RateLimitIP(120, time.Minute))
	{
		public.GET("/gigs", r.gigHandler.ListGigs)
		public.GET("/gigs/:id", r.gigHandler.GetGig)
		public.GET("/gigs/user/:userId", r.gigHandler.GetGigsByUser)
		public.GET("/users", r.userHandler.ListUsers)
		public.GET("/users/:id", r.userHandler.GetUser)
		public.GET("/portfolio/user/:userId", r.portfolioHandler.GetByFreelancer)
	}

	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	authed.Use(r.rateLimitMW.RateLimit(100, time.Minute))
	{
		authed.GET("/auth/me", r.userHandler.Me)
		authed.POST("/auth/complete-profile", r.userHandler.CompleteProfile)
		authed.PUT("/users/:id", r.userHandler.UpdateUser)
		authed.DELETE("/users/:id", r.userHandler.DeleteUser)

		authed.POST("/gigs", r.gigHandler.CreateGig)
		authed.PUT("/gigs/:id", r.gigHandler.UpdateGig)
		authed.DELETE("/gigs/:id", r.gigHandler.DeleteGig)
		authed.DELETE("/gigs/user/:userId", r.gigHandler.DeleteGigsByUser)
		authed.POST("/gigs/:id/thumbnail", r.gigHandler.UploadThumbnail)

		authed.POST("/contracts", r.contractHandler.CreateContract)
		authed.GET("/contracts", r.contractHandler.GetContracts)
		authed.GET("/contracts/:id", r.contractHandler.GetContract)
		authed.PUT("/contracts/:id/status", r.contractHandler.UpdateStatus)
		authed.DELETE("/contracts/:id", r.contractHandler.DeleteContract)
		authed.GET("/contracts/gig/:gigId", r.contractHandler.GetContractsByGig)
		authed.GET("/contracts/user/:userId", r.contractHandler.GetContractsByUser)

		authed.POST("/portfolio", r.portfolioHandler.CreateItem)
		authed.PUT("/portfolio/:id", r.portfolioHandler.UpdateItem)
		authed.DELETE("/portfolio/:id", r.portfolioHandler.DeleteItem)
		authed.POST("/portfolio/:id/thumbnail", r.portfolioHandler.UploadThumbnail)

		authed.GET("/chat/conversations", r.chatHandler.GetConversations)
		authed.GET("/chat/:contractId/messages", r.chatHandler.GetMessages)
		authed.PUT("/chat/:contractId/read", r.chatHandler.MarkAllRead)
		authed.PUT("/chat/messages/:id/read", r.chatHandler.MarkMessageRead)
	}
}

// Run starts the HTTP server on the given port.
func (r *Router) Run(port string) error {
	return r.engine.Run(":" + port)
}
