package json

type LoginRQ struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type LoginRS struct {
	Envelope
	Token string `json:"token"`
	// Expiration in seconds, zero means the supplier default applies.
	Expiration int `json:"expiration"`
}
