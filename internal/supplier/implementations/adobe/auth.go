package adobe

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/json"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/rs/zerolog"
)

// default token lifetime when the supplier does not send one. Slightly
// under the documented hour so a cached token never outlives the real one.
const defaultTokenLifetime = 55 * time.Minute

type authRequest struct {
	configuration configuration
	logger        *zerolog.Logger
	timeout       int
	cache         *caching.Cacher
}

type AuthResponse struct {
	Errors           *schema.SupplierResponseErrors `json:"errors,omitempty"`
	SupplierRequests *schema.SupplierRequests       `json:"supplierRequests,omitempty"`
	Token            *string                        `json:"token,omitempty"`
}

func (a *authRequest) Execute(httpTransport *http.Transport) (AuthResponse, error) {
	authResponse := AuthResponse{}

	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()

	authResponse.SupplierRequests = requestsBucket.SupplierRequests()
	authResponse.Errors = errorsBucket.Errors()

	ctx := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Auth)

	var cachedAuthToken string
	ok := a.cache.Fetch(ctx, a.getCacheKey(), &cachedAuthToken)
	if ok {
		authResponse.Token = &cachedAuthToken

		return authResponse, nil
	}

	client := &http.Client{
		Timeout: time.Duration(a.timeout) * time.Millisecond,
		Transport: &requesting.InterceptorTransport{
			Transport: httpTransport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(a.logger),
				requesting.NewBucketTransportMiddleware(&requestsBucket),
			},
		},
	}

	response, e := requesting.RequestErrors(a.makeRequest(ctx, client))

	if e != nil {
		errorsBucket.AddError(*e)
		return authResponse, nil
	}

	bodyBytes, _ := io.ReadAll(response.Body)
	response.Body.Close()

	var loginResponse json.LoginRS
	err := jsonEncoding.Unmarshal(bodyBytes, &loginResponse)
	if err != nil {
		errorsBucket.AddError(schema.NewParseError(err.Error()))
		return authResponse, nil
	}

	errorMessage := loginResponse.ErrorMessage()
	if errorMessage != "" {
		errorsBucket.AddError(schema.NewSupplierError(errorMessage))

		return authResponse, nil
	}

	authResponse.Token = &loginResponse.Token

	lifetime := defaultTokenLifetime
	if loginResponse.Expiration > 0 {
		lifetime = time.Duration(loginResponse.Expiration) * time.Second
	}

	err = a.cache.Store(ctx, a.getCacheKey(), loginResponse.Token, lifetime)
	if err != nil {
		return authResponse, err
	}

	return authResponse, nil
}

func (a *authRequest) makeRequest(ctx context.Context, client *http.Client) (*http.Response, error) {
	body := bytes.NewBuffer(a.requestBody())
	url := a.configuration.BaseUrl + "/Auth/Login"

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	httpRequest.Header.Set("Content-Type", "application/json")

	return client.Do(httpRequest)
}

func (a *authRequest) requestBody() []byte {
	json, _ := jsonEncoding.Marshal(&json.LoginRQ{
		UserName: a.configuration.Username,
		Password: a.configuration.Password,
	})

	return json
}

func (a *authRequest) getCacheKey() string {
	return fmt.Sprintf("adobe-auth-token:%s-%s", a.configuration.BaseUrl, a.configuration.Username)
}
