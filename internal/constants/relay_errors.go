package constants

// Upstream error codes

// Transport-related errors
const (
	ErrCodeNetworkError    = "NETWORK_ERROR"
	ErrCodeTimeout         = "TIMEOUT"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeEnvelopeFailure = "ENVELOPE_FAILURE"
)

// Resource errors
const (
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
)

// Capability errors
const (
	ErrCodeSDKUnavailable      = "SDK_UNAVAILABLE"
	ErrCodeWalletNotConnected  = "WALLET_NOT_CONNECTED"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
)

var RelayErrorMessages = map[string]string{
	ErrCodeNetworkError:    "Unable to reach the VERSIONS API",
	ErrCodeTimeout:         "The upstream request timed out",
	ErrCodeRateLimited:     "Rate limit exceeded. Please try again later",
	ErrCodeEnvelopeFailure: "The upstream service reported a failure",

	ErrCodeResourceNotFound:  "The requested resource was not found",
	ErrCodeInvalidDataFormat: "The data format is invalid",

	ErrCodeSDKUnavailable:      "The platform integration is not available in this environment",
	ErrCodeWalletNotConnected:  "Wallet not connected",
	ErrCodeInsufficientBalance: "Insufficient USDFC balance",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := RelayErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
