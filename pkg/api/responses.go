package api

// ErrorResponse is the minimal error shape for responses written before
// the RFC 9457 error middleware is in play (auth rejections, rate limits).
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// CreatedKeyResponse returns a freshly minted API key. The token is shown
// exactly once; only its hash is stored.
type CreatedKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	KeyPrefix string `json:"key_prefix"`
	Token     string `json:"token"`
}
