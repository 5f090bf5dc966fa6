package json

// Envelope is the wrapper every Adobe endpoint responds with.
type Envelope struct {
	Result  *bool   `json:"result"`
	Message *string `json:"message,omitempty"`
}

func (e Envelope) ErrorMessage() string {
	if e.Result == nil {
		return "missing result flag in supplier response"
	}

	if !*e.Result {
		if e.Message != nil {
			return *e.Message
		}
		return "supplier rejected the request"
	}

	return ""
}
