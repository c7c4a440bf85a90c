package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRuleNotFound indicates the grammar rule id is not registered
	ErrRuleNotFound = errors.New("grammar rule not found")

	// ErrUnsupportedPattern indicates a tag body no grammar rule matches.
	// Recovered via pass-through or AI fallback.
	ErrUnsupportedPattern = errors.New("unsupported tag pattern")

	// ErrPartialRender indicates a rule matched but an operand could not be
	// fully translated. Recovered with partial output and a warning.
	ErrPartialRender = errors.New("partial render")

	// ErrAdapterUnavailable indicates the AI fallback adapter is not
	// configured or could not be reached
	ErrAdapterUnavailable = errors.New("ai fallback adapter unavailable")

	// ErrLowConfidence indicates the AI fallback declined or answered below
	// the confidence floor
	ErrLowConfidence = errors.New("ai suggestion below confidence threshold")

	// ErrJobNotCancellable indicates the job already finished or is running
	ErrJobNotCancellable = errors.New("job cannot be cancelled")

	// ErrJobInProgress indicates the job is still running and cannot be
	// deleted yet
	ErrJobInProgress = errors.New("job still in progress")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
