package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
)

// RateTable is a full conversion table for one base currency. Tables are
// replaced atomically, never patched.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Provider  string             `json:"provider"`
}

type Provider interface {
	FetchRates(ctx context.Context, base string) (*RateTable, error)
}

type exchangeRateAPIResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// exchangeRateAPI talks to an exchangerate-api style endpoint:
// GET {base_url}/v6/{key}/latest/{BASE}
type exchangeRateAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zerolog.Logger
}

func NewExchangeRateAPI(log *zerolog.Logger) Provider {
	baseURL := os.Getenv("EXCHANGERATE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://v6.exchangerate-api.com"
	}

	return &exchangeRateAPI{
		baseURL: baseURL,
		apiKey:  os.Getenv("EXCHANGERATE_API_KEY"),
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &requesting.InterceptorTransport{
				Transport: http.DefaultTransport,
				Middlewares: []requesting.TransportMiddleware{
					requesting.NewLoggingTransportMiddleware(log),
				},
			},
		},
		log: log,
	}
}

func (p *exchangeRateAPI) FetchRates(ctx context.Context, base string) (*RateTable, error) {
	base = strings.ToUpper(base)
	url := fmt.Sprintf("%s/v6/%s/latest/%s", p.baseURL, p.apiKey, base)

	response, reqErr := requesting.DoWithRetry(
		p.client,
		func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		},
		requesting.DefaultAttempts,
		requesting.DefaultBackoff,
	)
	if reqErr != nil {
		return nil, errors.New(reqErr.Message)
	}
	defer response.Body.Close()

	bodyBytes, _ := io.ReadAll(response.Body)

	var parsed exchangeRateAPIResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, err
	}

	if parsed.Result != "success" {
		return nil, fmt.Errorf("rate provider rejected request: %s", parsed.ErrorType)
	}

	if len(parsed.ConversionRates) == 0 {
		return nil, errors.New("rate provider returned empty table")
	}

	rates := parsed.ConversionRates
	rates[base] = 1.0

	return &RateTable{
		Base:      base,
		Rates:     rates,
		FetchedAt: time.Now().UTC(),
		Provider:  "exchangerate-api",
	}, nil
}
