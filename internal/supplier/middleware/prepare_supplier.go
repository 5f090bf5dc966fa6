package middleware

import (
	"net/http"

	"bitbucket.org/crgw/booking-engine/internal/web/responding"
	"github.com/gin-gonic/gin"
)

type factory interface {
	GetSupplier(string) (any, error)
}

const (
	SupplierKey string = "supplier"
)

func PrepareSupplier(f factory) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		supplierFromPath := ctx.Params.ByName("supplier")

		supplier, err := f.GetSupplier(supplierFromPath)
		if err != nil {
			responding.HandleError(ctx, http.StatusNotFound, "Failed to find supplier service", err)
			ctx.Abort()
			return
		}

		ctx.Set(SupplierKey, supplier)
	}
}
