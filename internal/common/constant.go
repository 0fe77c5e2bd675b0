package common

const (
	// SessionCookieName is the cookie carrying the signed session handle.
	SessionCookieName = "session"

	// APIKeyHeaderName is the request header carrying the static API key.
	APIKeyHeaderName = "x-api-key"

	// RequestIDHeaderName is echoed back on every response.
	RequestIDHeaderName = "X-Request-ID"

	// ReceiptKeyHeaderName carries the object key of an archived receipt.
	ReceiptKeyHeaderName = "X-Receipt-Key"

	// RedactedPassword replaces the password in every outbound payload.
	RedactedPassword = "******"

	// ReceiptCodePrefix prefixes the cart item id in a receipt reference code.
	ReceiptCodePrefix = "COMPRA"
)
