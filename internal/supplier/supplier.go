package supplier

import (
	"fmt"
	"net/http"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/factory"
	"bitbucket.org/crgw/booking-engine/internal/supplier/grouping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/interfaces"
	supplierMiddleware "bitbucket.org/crgw/booking-engine/internal/supplier/middleware"
	"bitbucket.org/crgw/booking-engine/internal/tools/redisfactory"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"bitbucket.org/crgw/booking-engine/internal/web/responding"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RegisterRoutes(
	router *gin.Engine,
	factory *factory.Factory,
	redisFactory *redisfactory.Factory,
) {
	group := router.Group(
		"/:supplier",
		supplierMiddleware.PrepareSupplier(factory),
		supplierMiddleware.TapLogger,
	)

	group.POST("/search",
		supplierMiddleware.PrepareParams(schema.SearchRequestParams{}),
		grouping.Middleware(grouping.MiddlewareOptions{
			CreateManager: grouping.NewRequestManager,
			RedisClient:   redisFactory.SearchGroupingClient(),
		}),
		func(ctx *gin.Context) {
			logger := ctx.MustGet("logger").(*zerolog.Logger)

			slowLog := slowlog.CreateLogger(logger)
			key := fmt.Sprintf("%s:search", ctx.Params.ByName("supplier"))
			slowLog.Start(key)

			supplierWithSearch, ok := ctx.MustGet(supplierMiddleware.SupplierKey).(interfaces.WithSearch)
			if !ok {
				responding.HandleError(ctx, http.StatusBadRequest, "Search not implemented", errors.ErrorNotImplemented)
				return
			}

			params, ok := ctx.MustGet(supplierMiddleware.ParamsKey).(*schema.SearchRequestParams)
			if !ok {
				responding.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			response, err := supplierWithSearch.Search(ctx.Request.Context(), *params, logger)
			if err != nil {
				responding.HandleError(ctx, http.StatusInternalServerError, "Failed requesting vehicles", nil)
				return
			}

			ctx.JSON(http.StatusOK, response)

			slowLog.Stop(key)
		},
	)

	group.POST("/extras",
		supplierMiddleware.PrepareParams(schema.ExtrasRequestParams{}),
		func(ctx *gin.Context) {
			supplierWithExtras, ok := ctx.MustGet(supplierMiddleware.SupplierKey).(interfaces.WithExtras)
			if !ok {
				responding.HandleError(ctx, http.StatusBadRequest, "Extras not implemented", errors.ErrorNotImplemented)
				return
			}

			params, ok := ctx.MustGet(supplierMiddleware.ParamsKey).(*schema.ExtrasRequestParams)
			if !ok {
				responding.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			logger := ctx.MustGet("logger").(*zerolog.Logger)

			response, err := supplierWithExtras.GetExtras(ctx.Request.Context(), *params, logger)
			if err != nil {
				responding.HandleError(ctx, http.StatusInternalServerError, "Failed requesting extras", nil)
				return
			}

			ctx.JSON(http.StatusOK, response)
		},
	)
}
