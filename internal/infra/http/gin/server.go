package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
}

type QuoteHTTP interface {
	Create(c *gin.Context)
}

type CalendarHTTP interface {
	Window(c *gin.Context)
}

type ReservationHTTP interface {
	Create(c *gin.Context)
	Lookup(c *gin.Context)
	ListByEmail(c *gin.Context)
	ModifyCheck(c *gin.Context)
	Modify(c *gin.Context)
	Cancel(c *gin.Context)
}

type Handlers struct {
	Listing     ListingHTTP
	Quote       QuoteHTTP
	Calendar    CalendarHTTP
	Reservation ReservationHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
	}
	if h.Calendar != nil {
		api.GET("/listings/:id/calendar", h.Calendar.Window)
	}
	if h.Quote != nil {
		api.POST("/quotes", h.Quote.Create)
	}
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.GET("/reservations/lookup", h.Reservation.Lookup)
		api.GET("/reservations", h.Reservation.ListByEmail)
		api.POST("/reservations/:code/modify-check", h.Reservation.ModifyCheck)
		api.POST("/reservations/:code/modify", h.Reservation.Modify)
		api.POST("/reservations/:code/cancel", h.Reservation.Cancel)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
