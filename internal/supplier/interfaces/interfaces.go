package interfaces

import (
	"context"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"github.com/rs/zerolog"
)

type WithSearchGrouping interface {
	SearchGroupingCacheKey(context.Context, schema.SearchRequestParams, *zerolog.Logger) string
}

type WithSearch interface {
	Search(context.Context, schema.SearchRequestParams, *zerolog.Logger) (schema.SearchResponse, error)
}

type WithExtras interface {
	GetExtras(context.Context, schema.ExtrasRequestParams, *zerolog.Logger) (schema.ExtrasResponse, error)
}

type WithCreateReservation interface {
	CreateReservation(context.Context, schema.ReservationRequest, *zerolog.Logger) (schema.ReservationResult, error)
}
