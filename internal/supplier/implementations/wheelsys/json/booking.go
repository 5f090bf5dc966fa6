package json

// BookingRQ is the query string of the make-booking_<linkCode>.html endpoint.
type BookingRQ struct {
	Agent         string `url:"agent"`
	Account       string `url:"account"`
	DateFrom      string `url:"DATE_FROM"`
	TimeFrom      string `url:"TIME_FROM"`
	DateTo        string `url:"DATE_TO"`
	TimeTo        string `url:"TIME_TO"`
	PickupStation string `url:"PICKUP_STATION"`
	ReturnStation string `url:"RETURN_STATION"`
	Group         string `url:"GROUP"`
	FirstName     string `url:"FIRST_NAME"`
	LastName      string `url:"LAST_NAME"`
	Email         string `url:"EMAIL"`
	Phone         string `url:"PHONE"`
	Reference     string `url:"REF"`
	Options       string `url:"OPTIONS,omitempty"`
	Format        string `url:"format"`
}

// BookingRS statuses: CNF is a confirmed booking, REQ sits in the supplier's
// request queue until their staff accepts it.
type BookingRS struct {
	Status string `json:"status"`
	Irn    string `json:"irn"`
	RefNo  string `json:"refno"`
	Error  string `json:"error"`
}
