package json

// QuoteRQ is the query string of the price-quote_<linkCode>.html endpoint.
type QuoteRQ struct {
	Agent         string `url:"agent"`
	DateFrom      string `url:"DATE_FROM"`
	TimeFrom      string `url:"TIME_FROM"`
	DateTo        string `url:"DATE_TO"`
	TimeTo        string `url:"TIME_TO"`
	PickupStation string `url:"PICKUP_STATION"`
	ReturnStation string `url:"RETURN_STATION"`
	Format        string `url:"format"`
}

type QuoteRS struct {
	Rates []Rate `json:"Rates"`
}

// Rate carries money in integer cents. TotalRate is the daily rate.
type Rate struct {
	GroupCode    string   `json:"GroupCode"`
	SampleModel  string   `json:"SampleModel"`
	Category     string   `json:"Category"`
	Acriss       string   `json:"Acriss"`
	TotalRate    int      `json:"TotalRate"`
	Pax          *int     `json:"Pax"`
	Doors        *int     `json:"Doors"`
	Bags         *int     `json:"Bags"`
	Suitcases    *int     `json:"Suitcases"`
	Availability string   `json:"Availability"`
	ImageUrl     string   `json:"ImageUrl"`
	Unlimited    *bool    `json:"Unlimited"`
	IncKlm       *int     `json:"IncKlm"`
	FuelPolicy   string   `json:"FuelPolicy"`
	Options      []Option `json:"Options"`
}

type Option struct {
	Code       string `json:"Code"`
	Rate       int    `json:"Rate"`
	Mandatory  bool   `json:"Mandatory"`
	Inclusive  bool   `json:"Inclusive"`
	ChargeType string `json:"ChargeType"`
}
