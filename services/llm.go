package services

import (
	"context"
	"errors"
	"fmt"

	"nearbot/models"
)

// LLMClient is the narrow interface the bot needs from a hosted model
// provider. Implementations return a ProviderError on transport or provider
// failure.
type LLMClient interface {
	Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error)
}

// ProviderError labels a failed model call with a short kind so user-facing
// fallbacks can name what went wrong without leaking provider internals.
type ProviderError struct {
	Kind string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("provider error (%s)", e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrorKind extracts the kind label from a provider error, falling back to a
// generic label for anything else.
func ErrorKind(err error) string {
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Kind != "" {
		return perr.Kind
	}
	return "ProviderError"
}
