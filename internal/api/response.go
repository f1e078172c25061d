package api

import (
	"errors"
	"net/http"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/providers"
)

// statusFor maps an upstream error code onto an HTTP status. Errors that
// carry no code get fallback.
func statusFor(err error, fallback int) int {
	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		return fallback
	}
	switch pe.Code {
	case constants.ErrCodeResourceNotFound:
		return http.StatusNotFound
	case constants.ErrCodeSDKUnavailable:
		return http.StatusServiceUnavailable
	case constants.ErrCodeWalletNotConnected:
		return http.StatusUnauthorized
	case constants.ErrCodeInsufficientBalance:
		return http.StatusPaymentRequired
	case constants.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case constants.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case constants.ErrCodeInvalidDataFormat:
		return http.StatusBadRequest
	case constants.ErrCodeNetworkError, constants.ErrCodeEnvelopeFailure:
		return http.StatusBadGateway
	}
	return fallback
}

// respondWithError writes err using its mapped status.
func respondWithError(w http.ResponseWriter, err error, fallback int) {
	common.RespondError(w, err, http.StatusText(fallback), statusFor(err, fallback))
}

func respondBadRequest(w http.ResponseWriter, message string) {
	common.RespondError(w, nil, message, http.StatusBadRequest)
}
