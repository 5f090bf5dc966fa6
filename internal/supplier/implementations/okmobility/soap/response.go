package soap

import xmlEncoding "encoding/xml"

type ResponseEnvelope struct {
	XMLName xmlEncoding.Name `xml:"Envelope"`
	Body    ResponseBody     `xml:"Body"`
}

type ResponseBody struct {
	MultiplePrices    *MultiplePricesRS    `xml:"getMultiplePricesResponse"`
	CreateReservation *CreateReservationRS `xml:"createReservationResponse"`
}

type MultiplePricesRS struct {
	Result MultiplePricesResult `xml:"objResponse"`
}

type MultiplePricesResult struct {
	ResultStatus
	Prices []GroupPrice `xml:"getMultiplePrice"`
}

type ResultStatus struct {
	ErrorCode    string `xml:"errorCode"`
	ErrorMessage string `xml:"errorMessage"`
}

// Failed reports a non-success error code. An empty code is treated as
// success, some operations omit it on the happy path.
func (s ResultStatus) Failed() bool {
	return s.ErrorCode != "" && s.ErrorCode != "SUCCESS"
}

func (s ResultStatus) Message() string {
	if s.ErrorMessage != "" {
		return s.ErrorMessage
	}
	return s.ErrorCode
}

// GroupPrice is one rentable group quote. Values are euros, previewValue is
// the tax inclusive total for the whole rental.
type GroupPrice struct {
	GroupID         string     `xml:"GroupID"`
	GroupName       string     `xml:"Group_Name"`
	Sipp            string     `xml:"SIPP"`
	Token           string     `xml:"token"`
	RateCode        string     `xml:"rateCode"`
	PreviewValue    float64    `xml:"previewValue"`
	ValueWithoutTax float64    `xml:"valueWithoutTax"`
	TaxRate         float64    `xml:"taxRate"`
	DayValue        float64    `xml:"dayValue"`
	ImageURL        string     `xml:"imageURL"`
	KmsIncluded     string     `xml:"kmsIncluded"`
	DynamicRate     string     `xml:"dynamicRate"`
	StationID       string     `xml:"stationID"`
	Station         string     `xml:"Station"`
	AllExtras       *AllExtras `xml:"allExtras"`
}

type AllExtras struct {
	Extras []GroupExtra `xml:"allExtra"`
}

type GroupExtra struct {
	ExtraID          string  `xml:"extraID"`
	Name             string  `xml:"extra"`
	Description      string  `xml:"description"`
	Value            float64 `xml:"value"`
	ValueWithTax     float64 `xml:"valueWithTax"`
	TaxRate          float64 `xml:"taxRate"`
	Included         string  `xml:"extra_Included"`
	Required         string  `xml:"extra_Required"`
	Insurance        string  `xml:"insurance"`
	Excess           string  `xml:"excess"`
	PricePerContract string  `xml:"pricePerContract"`
	AcceptQuantity   string  `xml:"accept_quantity"`
}

type CreateReservationRS struct {
	Result CreateReservationResult `xml:"createReservationResult"`
}

type CreateReservationResult struct {
	ResultStatus
	// Status C means confirmed.
	Status        string `xml:"Status"`
	ReservationNr string `xml:"Reservation_Nr"`
}
