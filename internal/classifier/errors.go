package classifier

import "errors"

var (
	// ErrConfiguration is returned synchronously when the model identifier is
	// missing or unsupported, or when options resolve to invalid values.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput is returned by a predict call that cannot resolve an
	// image to classify.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelLoad wraps a failure from the load capability. Once a session
	// sees it, every predict call on that session fails with it.
	ErrModelLoad = errors.New("model load failed")

	// ErrClassification wraps a failure from the classify capability. It only
	// fails the call that produced it.
	ErrClassification = errors.New("classification failed")
)
