package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/abhicism/dailyplanner/docs"
	"github.com/abhicism/dailyplanner/internal/api/handler"
	"github.com/abhicism/dailyplanner/internal/api/middleware"
	"github.com/abhicism/dailyplanner/internal/core/ports"
	"github.com/abhicism/dailyplanner/internal/infrastructure/http/handlers"
)

const (
	bodyLimit            = "1M"
	defaultAuthRateLimit = 5
	defaultAuthBurst     = 10
)

// Dependencies is everything the router needs. Zero-value Registerer and
// Gatherer mean the Prometheus default registry.
type Dependencies struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Planner   ports.PlannerService
	Sessions  ports.SessionResolver
	Readiness map[string]handlers.PingFunc

	CORSOrigins []string
	// AuthRateLimit is requests per second per client IP on /register and
	// /login. Negative disables the limiter.
	AuthRateLimit float64

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(deps.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "planner",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	dayHandler := handler.NewDayHandler(deps.Planner)
	requireAuth := middleware.Auth(deps.Sessions)

	// --- Auth routes ---
	authLimit := authRateLimiter(deps.AuthRateLimit)
	e.POST("/register", authHandler.Register, authLimit...)
	e.POST("/login", authHandler.Login, authLimit...)

	// --- Planner routes (bearer token required) ---
	e.POST("/save_day", dayHandler.SaveDay, requireAuth)
	e.GET("/get_day/:date_key", dayHandler.GetDay, requireAuth)
	e.GET("/history", dayHandler.History, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(docs.SwaggerInfo.ReadDoc()))
	})

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func authRateLimiter(perSecond float64) []echo.MiddlewareFunc {
	if perSecond < 0 {
		return nil
	}
	limit, burst := rate.Limit(perSecond), int(perSecond*2)
	if perSecond == 0 {
		limit, burst = defaultAuthRateLimit, defaultAuthBurst
	}
	if burst < 1 {
		burst = 1
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})}
}
