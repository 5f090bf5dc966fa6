package schema

import (
	"net/http"
	"os"
	"sync"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
)

type Key string

const (
	RequestingTypeKey Key = "requestingType"
)

type SupplierRequestName string

const (
	Auth        SupplierRequestName = "auth"
	Search      SupplierRequestName = "search"
	Extras      SupplierRequestName = "extras"
	Reservation SupplierRequestName = "reservation"
)

type RequestContent struct {
	Url     *string         `json:"url,omitempty"`
	Method  *string         `json:"method,omitempty"`
	Body    *string         `json:"body,omitempty"`
	Headers *map[string]any `json:"headers,omitempty"`
}

type ResponseContent struct {
	StatusCode *int            `json:"statusCode,omitempty"`
	Headers    *map[string]any `json:"headers,omitempty"`
	Body       *string         `json:"body,omitempty"`
}

// SupplierRequest is one raw outbound call kept for audit/replay. The
// reconciler stores these on the booking so a failed reservation can be
// replayed by an operator.
type SupplierRequest struct {
	Name            *SupplierRequestName `json:"name,omitempty"`
	RequestContent  *RequestContent      `json:"requestContent,omitempty"`
	ResponseContent *ResponseContent     `json:"responseContent,omitempty"`
	Duration        *int                 `json:"duration,omitempty"`
	StartDateTime   *time.Time           `json:"startDateTime,omitempty"`
}

type SupplierRequests []SupplierRequest

type supplierRequestsBucket struct {
	supplierRequests SupplierRequests
	sync.Mutex
}

func NewSupplierRequestsBucket() supplierRequestsBucket {
	return supplierRequestsBucket{
		supplierRequests: []SupplierRequest{},
	}
}

func (r *supplierRequestsBucket) SupplierRequests() *SupplierRequests {
	return &r.supplierRequests
}

func (r *supplierRequestsBucket) AddRequests(requests SupplierRequests) {
	r.Lock()
	r.supplierRequests = append(r.supplierRequests, requests...)
	r.Unlock()
}

func (r *supplierRequestsBucket) FinishedRequest(
	requestType SupplierRequestName,
	startTime time.Time,
	statusCode int,
	method string,
	url string,
	requestBody string,
	requestHeaders http.Header,
	responseBody string,
	responseHeaders http.Header,
) {
	reqHeaders := converting.ConvertMap(requestHeaders)

	req := RequestContent{
		Url:     &url,
		Method:  &method,
		Body:    &requestBody,
		Headers: &reqHeaders,
	}

	historyRequest := SupplierRequest{
		Name:           &requestType,
		RequestContent: &req,
	}

	resHeaders := converting.ConvertMap(responseHeaders)

	res := ResponseContent{
		StatusCode: &statusCode,
		Headers:    &resHeaders,
		Body:       &responseBody,
	}

	historyRequest.ResponseContent = &res

	if os.Getenv("TEST") != "true" {
		duration := int(time.Since(startTime).Milliseconds())
		historyRequest.Duration = &duration
		historyRequest.StartDateTime = &startTime
	}

	r.Lock()
	r.supplierRequests = append(r.supplierRequests, historyRequest)
	r.Unlock()
}
