package providers

import (
	"context"
	"errors"
	"fmt"
	"net"

	"versions/relay/internal/constants"
)

// ProviderError is the error type every upstream adapter returns.
// Two ProviderErrors match under errors.Is when their codes are equal.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrSDKUnavailable = &ProviderError{
		Code:    constants.ErrCodeSDKUnavailable,
		Message: constants.GetErrorMessage(constants.ErrCodeSDKUnavailable),
	}
	ErrWalletNotConnected = &ProviderError{
		Code:    constants.ErrCodeWalletNotConnected,
		Message: constants.GetErrorMessage(constants.ErrCodeWalletNotConnected),
	}
	ErrNotFound = &ProviderError{
		Code:    constants.ErrCodeResourceNotFound,
		Message: constants.GetErrorMessage(constants.ErrCodeResourceNotFound),
	}
)

func codeOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsNotFound reports a NotFoundFailure.
func IsNotFound(err error) bool {
	return codeOf(err) == constants.ErrCodeResourceNotFound
}

// IsNetworkFailure reports a NetworkFailure: the request failed in
// transit, timed out, or the envelope carried success=false.
func IsNetworkFailure(err error) bool {
	switch codeOf(err) {
	case constants.ErrCodeNetworkError,
		constants.ErrCodeTimeout,
		constants.ErrCodeRateLimited,
		constants.ErrCodeEnvelopeFailure,
		constants.ErrCodeInvalidDataFormat:
		return true
	}
	return false
}

// IsSDKUnavailable reports an SDKUnavailableFailure.
func IsSDKUnavailable(err error) bool {
	return codeOf(err) == constants.ErrCodeSDKUnavailable
}

// transportError classifies a failed round trip.
func transportError(err error, endpoint string) *ProviderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ProviderError{
			Code:    constants.ErrCodeTimeout,
			Message: fmt.Sprintf("Request to %s timed out", endpoint),
			Err:     err,
		}
	}
	return &ProviderError{
		Code:    constants.ErrCodeNetworkError,
		Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
		Details: endpoint,
		Err:     err,
	}
}
