// Package notify sends transactional mails. Templates are fixed, content
// management is out of scope.
package notify

import "context"

type Confirmation struct {
	BookingNumber     string
	SupplierReference string
	CustomerName      string
	CustomerEmail     string
	VehicleModel      string
	GrandTotal        float64
	Currency          string
}

// Alert goes to the operator inbox when a paid booking could not be reserved
// with the supplier.
type Alert struct {
	BookingNumber string
	Reference     string
	Source        string
	Reason        string
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, confirmation Confirmation) error
	OperatorAlert(ctx context.Context, alert Alert) error
}

type NopNotifier struct{}

func (NopNotifier) BookingConfirmed(ctx context.Context, confirmation Confirmation) error {
	return nil
}

func (NopNotifier) OperatorAlert(ctx context.Context, alert Alert) error {
	return nil
}
