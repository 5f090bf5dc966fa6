package mapping

type SupplierRateReference struct {
	Token          string `json:"token"`
	GroupID        string `json:"groupId"`
	GroupCode      string `json:"groupCode"`
	RateCode       string `json:"rateCode,omitempty"`
	PickUpStation  string `json:"pickUpStation"`
	DropOffStation string `json:"dropOffStation"`
	PickUpDate     string `json:"pickUpDate"`
	DropOffDate    string `json:"dropOffDate"`
}
