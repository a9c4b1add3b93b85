package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// APIKeyHeaderName carries the backend access key.
	APIKeyHeaderName = "apikey"
)
