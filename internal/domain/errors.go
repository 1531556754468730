package domain

import "errors"

var (
	// ErrConfig is returned when a game cannot be built from the given catalog or settings.
	ErrConfig = errors.New("invalid game configuration")
	// ErrInvalidChoice is returned when a submitted choice index is outside the displayed flags.
	ErrInvalidChoice = errors.New("choice index out of range")
	// ErrResultPending is returned when an answer arrives before the previous result was acknowledged.
	ErrResultPending = errors.New("previous result not acknowledged")
	// ErrNoPendingResult is returned when acknowledge is called with nothing to acknowledge.
	ErrNoPendingResult = errors.New("no pending result")
	// ErrGameNotFound is returned when a game ID is unknown to the service.
	ErrGameNotFound = errors.New("game not found")
	// ErrCatalogNotFound indicates the country catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
)
