package dtos

// Envelope is the {success, data, error} wrapper every VERSIONS API
// response uses.
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Error   *string `json:"error"`
}

func SuccessEnvelope[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

func ErrorEnvelope[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Error: &message}
}

// ErrorMessage returns the error text or an empty string.
func (e Envelope[T]) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}
