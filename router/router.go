package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/config"
	"github.com/yeremiapane/hotel-ops/controllers"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/metrics"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
)

type Dependencies struct {
	Config  *config.Config
	Store   database.Store
	Tokens  *utils.TokenManager
	Audit   services.Recorder
	Hub     *live.Hub
	Metrics *metrics.Metrics
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	if err := utils.RegisterValidators(); err != nil {
		utils.ErrorLogger.Errorf("Error registering validators: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.HTTP.AllowedOrigins))
	r.Use(middlewares.MetricsMiddleware(deps.Metrics))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimiter.RequestsPerSecond, cfg.RateLimiter.Burst).RateLimit())

	gate := middlewares.NewGate(deps.Tokens, cfg.Auth.ViewPINs, deps.Store)
	viewer := gate.Require(middlewares.CapabilityViewer)
	staff := gate.Require(middlewares.CapabilityStaff)
	admin := gate.Require(middlewares.CapabilityAdmin)

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(deps.Store, deps.Tokens, gate)
	roomCtrl := controllers.NewRoomController(deps.Store, deps.Audit)
	titleCtrl := controllers.NewTitleController(deps.Store, deps.Audit)
	issueCtrl := controllers.NewIssueController(deps.Store, deps.Audit)
	userCtrl := controllers.NewUserController(deps.Store, deps.Audit)
	logCtrl := controllers.NewLogController(deps.Store)
	liveCtrl := controllers.NewLiveController(deps.Hub, cfg.HTTP.AllowedOrigins)
	healthCtrl := controllers.NewHealthController(deps.Store)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	api.GET("/health", healthCtrl.Health)

	login := middlewares.NewLoginRateLimiter(cfg.RateLimiter.LoginPerMinute, cfg.RateLimiter.LoginBurst)
	public := api.Group("/")
	public.Use(login.RateLimit())
	{
		public.POST("/auth/login", authCtrl.Login)
		public.POST("/auth/pin", authCtrl.PINLogin)
		public.POST("/verify-pin", authCtrl.VerifyPIN)
	}

	// ----------------------------------------------------------------
	//                      ROOMS, CATEGORIES, ISSUES
	// ----------------------------------------------------------------
	rooms := api.Group("/rooms")
	{
		// token atau PIN
		rooms.GET("", viewer, roomCtrl.GetRooms)
		rooms.GET("/:roomId", viewer, roomCtrl.GetRoom)
		rooms.GET("/:roomId/titles", viewer, titleCtrl.GetTitles)

		rooms.POST("", staff, roomCtrl.CreateRoom)
		rooms.PUT("/:roomId", staff, roomCtrl.UpdateRoom)
		rooms.DELETE("/:roomId", staff, roomCtrl.DeleteRoom)

		rooms.POST("/:roomId/titles", staff, titleCtrl.CreateTitle)
		rooms.PUT("/:roomId/titles/:titleId", staff, titleCtrl.UpdateTitle)
		rooms.DELETE("/:roomId/titles/:titleId", staff, titleCtrl.DeleteTitle)

		issues := rooms.Group("/:roomId/titles/:titleId/issues", staff)
		{
			issues.GET("", issueCtrl.GetIssues)
			issues.POST("", issueCtrl.CreateIssue)
			issues.PUT("/:issueId", issueCtrl.UpdateIssue)
			issues.DELETE("/:issueId", issueCtrl.DeleteIssue)
		}
	}

	api.GET("/ws", staff, liveCtrl.Stream)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	users := api.Group("/users", admin)
	{
		users.GET("", userCtrl.GetAllUsers)
		users.POST("", userCtrl.CreateUser)
		users.PUT("/:id/password", userCtrl.UpdatePassword)
		users.PUT("/:id/role", userCtrl.UpdateRole)
		users.DELETE("/:id", userCtrl.DeleteUser)
	}

	api.GET("/logs", admin, logCtrl.GetLogs)

	return r
}
