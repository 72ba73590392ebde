package forecast

import "errors"

var (
	// ErrInvalidRequest is returned for a horizon that is not an integer in [1, max].
	ErrInvalidRequest = errors.New("invalid forecast request")
	// ErrDataLoad is returned when the historical series is missing, unparsable or empty.
	ErrDataLoad = errors.New("historical data unavailable")
	// ErrModelLoad is returned when the model artifact is missing or corrupt.
	ErrModelLoad = errors.New("model artifact unavailable")
	// ErrModelOutput is returned when the model's predictions do not match the planned range.
	ErrModelOutput = errors.New("model output mismatch")
)
