package planner

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProviderTimeout reports an external call that exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timeout")
	// ErrProviderUnavailable reports transport, quota or decoding failures of a provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNoImage reports that a place carries nothing an image resolver can work with.
	ErrNoImage = errors.New("no image for place")
)

// ProviderError annotates a provider failure with its origin.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Classify wraps err into a ProviderError, mapping deadlines to ErrProviderTimeout
// and everything else to ErrProviderUnavailable unless err already carries one of them.
func Classify(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrProviderTimeout), errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrNoImage):
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	case errors.Is(err, context.Canceled):
	default:
		err = fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

func isTransient(err error) bool {
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrProviderUnavailable)
}

// Degradation records an insight or image call that was replaced by a fallback value.
type Degradation struct {
	Provider string
	PlaceID  string
	Place    string
	Err      error
}

// ErrorKind classifies composition failures.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNoPlaces
	KindCompositionFailed
)

// ComposeError is the only error type returned by Composer.Compose.
type ComposeError struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Cause   error
}

func (e *ComposeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ComposeError) Unwrap() error { return e.Cause }

// Code returns the stable wire code of the error.
func (e *ComposeError) Code() string {
	switch e.Kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNoPlaces:
		return "NO_PLACES_FOUND"
	default:
		return "GENERATION_FAILED"
	}
}

func validationError(field, message string) *ComposeError {
	return &ComposeError{
		Kind:    KindValidation,
		Message: message,
		Details: map[string]any{"field": field},
	}
}

func noPlacesError(req Request) *ComposeError {
	return &ComposeError{
		Kind:    KindNoPlaces,
		Message: fmt.Sprintf("No places found in %s with rating >= %.1f", req.City, req.MinRating),
		Details: requestDetails(req),
	}
}

func compositionFailed(req Request, cause error) *ComposeError {
	return &ComposeError{
		Kind:    KindCompositionFailed,
		Message: "Failed to generate itinerary",
		Details: requestDetails(req),
		Cause:   cause,
	}
}

func requestDetails(req Request) map[string]any {
	return map[string]any{
		"city":      req.City,
		"date":      req.Date,
		"minRating": req.MinRating,
	}
}
