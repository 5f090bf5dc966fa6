package mapping

type SupplierRateReference struct {
	SippCode           string `json:"sippCode"`
	PickUpLocationCode string `json:"pickUpLocationCode"`
	ReturnLocationCode string `json:"returnLocationCode"`
	PickUpDateTime     string `json:"pickUpDateTime"`
	ReturnDateTime     string `json:"returnDateTime"`
}
