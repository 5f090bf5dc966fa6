package requesting

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
)

func isValidResponse(code int) bool {
	return code >= 200 && code <= 299
}

func RequestErrors(response *http.Response, err error) (*http.Response, *schema.SupplierResponseError) {
	if err != nil {
		if os.IsTimeout(err) {
			e := schema.NewTimeoutError(err.Error())
			return nil, &e
		}

		e := schema.NewTransportError(err.Error())
		return nil, &e
	}

	if !isValidResponse(response.StatusCode) {
		e := schema.NewSupplierError(fmt.Sprintf("supplier returned status code %d", response.StatusCode))
		return nil, &e
	}

	return response, nil
}

// IsRetryable reports whether a response error is worth another attempt.
// Parse and supplier rejections are deterministic, only network trouble is
// retried.
func IsRetryable(e *schema.SupplierResponseError) bool {
	return e != nil && (e.Code == schema.TransportError || e.Code == schema.TimeoutError)
}

// TripsBreaker reports whether a response error counts against the supplier's
// circuit breaker. Transport trouble and an unparseable body both mean the
// supplier is not answering usefully. An explicit rejection is a working
// supplier saying no, it does not count.
func TripsBreaker(e *schema.SupplierResponseError) bool {
	return e != nil && (e.Code == schema.TransportError || e.Code == schema.TimeoutError || e.Code == schema.ParseError)
}

const (
	DefaultAttempts = 3
	DefaultBackoff  = 250 * time.Millisecond
)

// DoWithRetry executes build/do cycles until a non-retryable outcome or the
// attempt budget runs out. The request is rebuilt per attempt because bodies
// are single-use.
func DoWithRetry(
	client *http.Client,
	build func() (*http.Request, error),
	attempts int,
	backoff time.Duration,
) (*http.Response, *schema.SupplierResponseError) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr *schema.SupplierResponseError

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff * time.Duration(attempt))
		}

		request, err := build()
		if err != nil {
			e := schema.NewTransportError(err.Error())
			return nil, &e
		}

		response, reqErr := RequestErrors(client.Do(request))
		if reqErr == nil {
			return response, nil
		}

		lastErr = reqErr
		if !IsRetryable(reqErr) {
			break
		}
	}

	return nil, lastErr
}
