package currency

import (
	"errors"
	"net/http"

	"bitbucket.org/crgw/booking-engine/internal/web/responding"
	"github.com/gin-gonic/gin"
)

type convertParams struct {
	Amount float64 `json:"amount" binding:"min=0"`
	From   string  `json:"from" binding:"required"`
	To     string  `json:"to" binding:"required"`
}

type rateParams struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func RegisterRoutes(router *gin.Engine, service *Service) {
	group := router.Group("/currency")

	group.POST("/convert", func(ctx *gin.Context) {
		var params convertParams
		if err := ctx.ShouldBindJSON(&params); err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Bad conversion params", err)
			return
		}

		conversion, err := service.Convert(ctx.Request.Context(), params.Amount, params.From, params.To)
		if errors.Is(err, ErrUnknownCurrency) {
			responding.HandleError(ctx, http.StatusUnprocessableEntity, "Unknown currency pair", err)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed converting amount", err)
			return
		}

		ctx.JSON(http.StatusOK, conversion)
	})

	group.POST("/rate", func(ctx *gin.Context) {
		var params rateParams
		if err := ctx.ShouldBindJSON(&params); err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Bad rate params", err)
			return
		}

		rate, err := service.GetRate(ctx.Request.Context(), params.From, params.To)
		if errors.Is(err, ErrUnknownCurrency) {
			responding.HandleError(ctx, http.StatusUnprocessableEntity, "Unknown currency pair", err)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed resolving rate", err)
			return
		}

		ctx.JSON(http.StatusOK, rate)
	})

	group.GET("/rates/:base", func(ctx *gin.Context) {
		table, cacheHit, degraded := service.AllRates(ctx.Request.Context(), ctx.Params.ByName("base"))

		ctx.JSON(http.StatusOK, gin.H{
			"table":    table,
			"cacheHit": cacheHit,
			"degraded": degraded,
		})
	})
}
