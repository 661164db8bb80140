package constant

// StatusCode is the internal status code returned alongside every chat API
// response. Values are part of the wire contract with the frontend.
type StatusCode int

const (
	// Success
	StatusSuccess StatusCode = 1

	// General errors
	StatusInvalidInput             StatusCode = 2
	StatusGlobalRateLimitExhausted StatusCode = 3
	StatusUserRateLimitExhausted   StatusCode = 4

	// Processing status
	StatusMessageUnderProcessing   StatusCode = 5
	StatusMessageProcessingSuccess StatusCode = 6

	// Error
	StatusProcessingError StatusCode = 7
)
