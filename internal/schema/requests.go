package schema

import "time"

type RequestLocation struct {
	Code     string    `json:"code" binding:"required"`
	DateTime time.Time `json:"dateTime" binding:"required" time_format:"2006-01-02T15:04:05"`
}

type Timeouts struct {
	// Default is the per-call timeout in milliseconds.
	Default     int  `json:"default"`
	Search      *int `json:"search,omitempty"`
	Reservation *int `json:"reservation,omitempty"`
}

func (t Timeouts) ForSearch() int {
	if t.Search != nil {
		return *t.Search
	}
	return t.defaultOr()
}

func (t Timeouts) ForReservation() int {
	if t.Reservation != nil {
		return *t.Reservation
	}
	return t.defaultOr()
}

func (t Timeouts) defaultOr() int {
	if t.Default > 0 {
		return t.Default
	}
	return 10000
}

type SearchRequestParams struct {
	PickUp           RequestLocation `json:"pickUp" binding:"required"`
	DropOff          RequestLocation `json:"dropOff" binding:"required"`
	Age              int             `json:"age"`
	CustomerCurrency string          `json:"customerCurrency"`
	RentalCode       string          `json:"rentalCode,omitempty"`
	Timeouts         Timeouts        `json:"timeouts"`
}

type SearchResponse struct {
	Vehicles         []Vehicle               `json:"vehicles"`
	Errors           *SupplierResponseErrors `json:"errors,omitempty"`
	SupplierRequests *SupplierRequests       `json:"supplierRequests,omitempty"`
}

type ExtrasRequestParams struct {
	LocationCode    string          `json:"locationCode" binding:"required"`
	VehicleCategory string          `json:"vehicleCategory"`
	PickUp          RequestLocation `json:"pickUp" binding:"required"`
	DropOff         RequestLocation `json:"dropOff" binding:"required"`
	Timeouts        Timeouts        `json:"timeouts"`
}

type ExtrasResponse struct {
	Extras           []Extra                 `json:"extras"`
	Errors           *SupplierResponseErrors `json:"errors,omitempty"`
	SupplierRequests *SupplierRequests       `json:"supplierRequests,omitempty"`
}

type Customer struct {
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone,omitempty"`
	Age              int    `json:"age,omitempty"`
	ResidenceCountry string `json:"residenceCountry,omitempty"`
	AffiliateCode    string `json:"affiliateCode,omitempty"`
}

// ReservationRequest is the full payload captured at draft time and replayed
// verbatim against the supplier after payment, never re-derived from request
// state.
type ReservationRequest struct {
	Source            string          `json:"source" binding:"required"`
	SupplierVehicleID string          `json:"supplierVehicleId" binding:"required"`
	RateReference     string          `json:"rateReference,omitempty"`
	PickUp            RequestLocation `json:"pickUp" binding:"required"`
	DropOff           RequestLocation `json:"dropOff" binding:"required"`
	Customer          Customer        `json:"customer" binding:"required"`
	Extras            []Extra         `json:"extras,omitempty"`
	Breakdown         PriceBreakdown  `json:"breakdown"`
	BookingNumber     string          `json:"bookingNumber,omitempty"`
	BookingReference  string          `json:"bookingReference,omitempty"`
	Timeouts          Timeouts        `json:"timeouts"`
}

type ReservationStatus string

const (
	ReservationStatusOK      ReservationStatus = "OK"
	ReservationStatusPending ReservationStatus = "PENDING"
	ReservationStatusFailed  ReservationStatus = "FAILED"
)

type ReservationResult struct {
	Status            ReservationStatus       `json:"status"`
	SupplierReference *string                 `json:"supplierReference,omitempty"`
	Errors            *SupplierResponseErrors `json:"errors,omitempty"`
	SupplierRequests  *SupplierRequests       `json:"supplierRequests,omitempty"`
}
