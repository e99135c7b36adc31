package router

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/controllers"
	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/middlewares"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

// SetupRouter builds the services on db and wires every route. live may be
// nil, in which case events are dropped and /api/admin/live is not served.
func SetupRouter(db *gorm.DB, cfg *config.Config, live *hub.Hub) (*gin.Engine, error) {
	utils.RegisterValidators()

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	var events services.Broadcaster
	if live != nil {
		events = live
	}

	seatService := services.NewSeatService(db, cfg.Seats.Count, events)
	authService := services.NewAuthService(db, tokens, seatService, cfg.Auth.AdminCode, cfg.Auth.BcryptCost)
	userService := services.NewUserService(db, seatService, cfg.Auth.BcryptCost, cfg.Auth.DefaultResetPassword)
	assets := services.NewAssetStore(cfg.Server.UploadDir)
	menuService := services.NewMenuService(db, assets, cfg.Server.BaseURL, events)
	orderService := services.NewOrderService(db, seatService, events, cfg.Orders.PermissiveTransitions)
	statsService := services.NewStatsService(db)

	authController := controllers.NewAuthController(authService, seatService)
	userController := controllers.NewUserController(userService)
	menuController := controllers.NewMenuController(menuService, cfg.Server.MaxUploadBytes)
	seatController := controllers.NewSeatController(seatService)
	orderController := controllers.NewOrderController(orderService)
	adminController := controllers.NewAdminController(statsService)

	r := gin.New()
	r.Use(gin.Recovery())
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			return nil, err
		}
	} else {
		_ = r.SetTrustedProxies(nil)
	}
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.PrometheusMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.Server.Mode == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(cfg.Server.CORSOrigin))
	r.NoRoute(utils.NoRoute)

	// Only image files are served from the upload directory.
	uploads := r.Group("/uploads", imagesOnly())
	uploads.Static("/", cfg.Server.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.Server.RateLimit.Enabled {
		limiter := middlewares.NewRateLimiter(cfg.Server.RateLimit.PerSecond, time.Second)
		api.Use(limiter.RateLimit())
	}

	auth := api.Group("/auth")
	{
		credentials := []gin.HandlerFunc{}
		if cfg.Server.RateLimit.Enabled {
			strict := middlewares.NewStrictRateLimiter(cfg.Server.RateLimit.AuthPerMinute)
			credentials = append(credentials, strict.Middleware())
		}

		auth.GET("/check-registerid/:id", authController.CheckRegisterID)
		auth.POST("/register", append(credentials, authController.Register)...)
		auth.POST("/login", append(credentials, authController.Login)...)
		auth.POST("/logout", middlewares.AuthMiddleware(tokens), authController.Logout)
	}

	api.GET("/seats", seatController.GetSeats)

	authorized := api.Group("/")
	authorized.Use(middlewares.AuthMiddleware(tokens))
	{
		users := authorized.Group("/users")
		users.GET("/me", userController.GetProfile)
		users.POST("/change-password", userController.ChangePassword)
		users.GET("", middlewares.AdminOnly(), userController.GetAllUsers)
		users.POST("/:id/reset-password", middlewares.AdminOnly(), userController.ResetPassword)

		menus := authorized.Group("/menus")
		menus.GET("", menuController.GetAllMenus)
		menus.POST("", middlewares.AdminOnly(), menuController.CreateMenu)
		menus.PUT("/:id", middlewares.AdminOnly(), menuController.UpdateMenu)
		menus.DELETE("/:id", middlewares.AdminOnly(), menuController.DeleteMenu)

		orders := authorized.Group("/orders")
		orders.GET("", orderController.GetOrders)
		orders.POST("", orderController.CreateOrder)
		orders.GET("/:id", orderController.GetOrder)
		orders.PUT("/:id", middlewares.AdminOnly(), orderController.UpdateOrderStatus)

		authorized.POST("/time-charge", seatController.PurchaseTime)

		admin := authorized.Group("/admin")
		admin.Use(middlewares.AdminOnly())
		admin.GET("/dashboard", adminController.GetDashboardStats)
		admin.GET("/seats", seatController.GetSeatDetails)
		admin.POST("/force-logout/:seatNumber", seatController.ForceLogout)
		admin.POST("/charge-time/:seatNumber", seatController.ChargeTime)
		admin.POST("/remove-time/:seatNumber", seatController.RemoveTime)
	}

	if live != nil {
		liveController := controllers.NewLiveController(live)
		api.GET("/admin/live", middlewares.WebSocketAuthMiddleware(tokens), liveController.LiveHandler)
	}

	return r, nil
}

func imagesOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ext := strings.ToLower(filepath.Ext(c.Request.URL.Path))
		if !services.AllowedImageExts[ext] {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
