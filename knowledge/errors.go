package knowledge

import "errors"

var (
	// ErrBaseURLRequired is returned when a client is created without an API base URL.
	ErrBaseURLRequired = errors.New("api base url required")

	// ErrTokenRequired is returned when a client is created without an API token.
	ErrTokenRequired = errors.New("api token required")

	// ErrKnowledgeIDRequired is returned when registration is attempted
	// without a knowledge collection ID configured.
	ErrKnowledgeIDRequired = errors.New("knowledge collection id required")
)
