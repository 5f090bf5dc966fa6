package booking

import (
	"errors"
	"io"
	"net/http"

	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/web/responding"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RegisterRoutes wires the customer-facing booking flow, the payment
// reconciliation endpoints and the operator back office.
func RegisterRoutes(
	router *gin.Engine,
	orchestrator *Orchestrator,
	reconciler *Reconciler,
	gateway payment.Gateway,
	operatorAuth gin.HandlerFunc,
) {
	router.POST("/bookings", func(ctx *gin.Context) {
		logger := ctx.MustGet("logger").(*zerolog.Logger)

		var params CreateParams
		if err := ctx.ShouldBindJSON(&params); err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Bad booking payload", err)
			return
		}

		result, err := orchestrator.CreateBooking(ctx.Request.Context(), params, logger)
		if errors.Is(err, ErrUnsupportedSource) {
			responding.HandleError(ctx, http.StatusBadRequest, "Reservations not implemented for source", err)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed creating booking", err)
			return
		}

		ctx.JSON(http.StatusCreated, result)
	})

	router.GET("/bookings/:reference", func(ctx *gin.Context) {
		b, err := orchestrator.GetBooking(ctx.Request.Context(), ctx.Params.ByName("reference"))
		if errors.Is(err, ErrNotFound) {
			responding.HandleError(ctx, http.StatusNotFound, "Booking not found", nil)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed loading booking", err)
			return
		}

		ctx.JSON(http.StatusOK, b)
	})

	router.POST("/bookings/:reference/cancel", func(ctx *gin.Context) {
		err := orchestrator.Cancel(ctx.Request.Context(), ctx.Params.ByName("reference"))
		if errors.Is(err, ErrNotFound) {
			responding.HandleError(ctx, http.StatusNotFound, "Booking not found", nil)
			return
		}
		if errors.Is(err, ErrNotCancellable) {
			responding.HandleError(ctx, http.StatusConflict, "Booking is past the cancellable state", err)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed cancelling booking", err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": StatusCancelledByUser})
	})

	router.GET("/payments/success", func(ctx *gin.Context) {
		logger := ctx.MustGet("logger").(*zerolog.Logger)

		sessionID := ctx.Query("session_id")
		if sessionID == "" {
			responding.HandleError(ctx, http.StatusBadRequest, "Missing session_id", nil)
			return
		}

		b, err := reconciler.CompleteFromRedirect(ctx.Request.Context(), sessionID, logger)
		if errors.Is(err, ErrUnknownSession) {
			responding.HandleError(ctx, http.StatusNotFound, "Unknown checkout session", nil)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed reconciling payment", err)
			return
		}

		ctx.JSON(http.StatusOK, b)
	})

	router.POST("/payments/webhook", func(ctx *gin.Context) {
		logger := ctx.MustGet("logger").(*zerolog.Logger)

		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Unreadable webhook payload", err)
			return
		}

		event, err := gateway.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
		if err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Webhook signature verification failed", err)
			return
		}

		err = reconciler.HandleEvent(ctx.Request.Context(), event, logger)
		if errors.Is(err, ErrUnknownSession) {
			// acknowledged: a retry will not produce a booking we never issued
			logger.Error().Str("type", event.Type).Msg("completed payment for unknown session")
			ctx.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed processing webhook", err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})

	operations := router.Group("/operations", operatorAuth)

	operations.GET("/bookings/failed", func(ctx *gin.Context) {
		failed, err := orchestrator.ListFailedReservations(ctx.Request.Context())
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed listing bookings", err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"bookings": failed})
	})

	operations.POST("/bookings/:reference/retry-reservation", func(ctx *gin.Context) {
		logger := ctx.MustGet("logger").(*zerolog.Logger)

		b, err := orchestrator.RetryReservation(ctx.Request.Context(), ctx.Params.ByName("reference"), logger)
		if errors.Is(err, ErrNotFound) {
			responding.HandleError(ctx, http.StatusNotFound, "Booking not found", nil)
			return
		}
		if errors.Is(err, ErrNotRetryable) {
			responding.HandleError(ctx, http.StatusConflict, "Booking is not in a retryable state", err)
			return
		}
		if errors.Is(err, ErrReservationFailedAfterPayment) {
			// the retry itself failed again; report the state instead of a 500
			ctx.JSON(http.StatusOK, b)
			return
		}
		if err != nil {
			responding.HandleError(ctx, http.StatusInternalServerError, "Failed retrying reservation", err)
			return
		}

		ctx.JSON(http.StatusOK, b)
	})
}
