package web

import (
	"net/http"
	"os"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/booking"
	"bitbucket.org/crgw/booking-engine/internal/currency"
	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/supplier"
	"bitbucket.org/crgw/booking-engine/internal/supplier/factory"
	"bitbucket.org/crgw/booking-engine/internal/tools/redisfactory"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies carries everything the router mounts besides the middleware
// chain.
type Dependencies struct {
	RedisFactory *redisfactory.Factory
	Suppliers    *factory.Factory
	Orchestrator *booking.Orchestrator
	Reconciler   *booking.Reconciler
	Gateway      payment.Gateway
	Currency     *currency.Service
}

func SetupRouter(log *zerolog.Logger, deps Dependencies) *gin.Engine {
	startTime := time.Now()

	router := gin.New()

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router.
		Use(StartRequest).
		Use(CorrelationId).
		Use(RegisterLogger(log)).
		Use(TraceLog).
		Use(PanicRecovery)

	router.GET("/status", func(c *gin.Context) {
		response := struct {
			Uptime float64 `json:"uptime"`
		}{
			Uptime: time.Since(startTime).Seconds(),
		}

		c.JSON(http.StatusOK, response)
	})

	pprof.Register(router)

	currency.RegisterRoutes(router, deps.Currency)
	booking.RegisterRoutes(router, deps.Orchestrator, deps.Reconciler, deps.Gateway, OperatorAuth())
	supplier.RegisterRoutes(router, deps.Suppliers, deps.RedisFactory)

	return router
}
