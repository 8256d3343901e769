package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyText is returned when there is no text to send to the model.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidResponse is returned when the model answer cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned when retries are exhausted on temporary errors.
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the provider configuration is invalid.
	ErrInvalidConfig = errors.New("invalid gemini configuration")
)
