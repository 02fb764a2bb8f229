package router // package router wires handlers and middleware onto an Echo instance

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/industry-portal/internal/config"
	"github.com/iliyamo/industry-portal/internal/handler"
	"github.com/iliyamo/industry-portal/internal/metrics"
	"github.com/iliyamo/industry-portal/internal/middleware"
	"github.com/iliyamo/industry-portal/internal/model"
)

// Deps is everything RegisterRoutes needs.  Redis may be nil, in which case
// rate limiting runs in memory.
type Deps struct {
	Config        config.Config
	Log           *zap.Logger
	Metrics       *metrics.Metrics
	Redis         *redis.Client
	Authenticator middleware.Authenticator
	Auth          *handler.AuthHandler
	Dashboard     *handler.DashboardHandler
	Health        *handler.HealthHandler
}

// RegisterRoutes installs the global middleware chain, the error handler and
// every route of the API.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))
	e.Use(echomw.BodyLimit("10M"))
	e.Use(echomw.Gzip())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	// Unauthenticated infrastructure endpoints
	e.GET("/", handler.Welcome)
	e.GET("/health", d.Health.Health)

	api := e.Group("/api", middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Log, middleware.SkipHealth))
	api.GET("/health", d.Health.Health)

	registerAuth(api, d)
	registerDashboard(api, d)
}

func registerAuth(api *echo.Group, d Deps) {
	authn := middleware.Authenticate(d.Authenticator, d.Config.RequestTimeout)

	g := api.Group("/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.GET("/me", d.Auth.Me, middleware.OptionalAuthenticate(d.Authenticator, d.Config.RequestTimeout))
	g.PUT("/change-password", d.Auth.ChangePassword, authn)
	g.POST("/logout", d.Auth.Logout, authn)
}

func registerDashboard(api *echo.Group, d Deps) {
	h := d.Dashboard

	g := api.Group("/dashboard", middleware.Authenticate(d.Authenticator, d.Config.RequestTimeout))
	g.GET("", h.Dashboard)
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/navigation", h.Navigation)
	g.GET("/payments/options", h.PaymentOptions)

	for _, t := range []model.IndustryType{model.IndustryTour, model.IndustryTravel, model.IndustryLogistics} {
		g.GET("/"+string(t), h.IndustryDashboard(t), middleware.RequireIndustry(t))
	}
}
