package domain

import "errors"

var (
	// Session store
	ErrSessionNotFound = errors.New("conversation state not found")

	// Calculator input
	ErrUnknownWarehouse = errors.New("unknown warehouse")
	ErrUnknownCountry   = errors.New("unknown destination country")
	ErrUnknownCity      = errors.New("unknown destination city")
	ErrInvalidWeight    = errors.New("weight is not a number")
	ErrWeightOutOfRange = errors.New("weight out of range")
	ErrWrongStep        = errors.New("input does not match the current step")

	// Upstream calls
	ErrNoTariffs  = errors.New("no tariffs for route")
	ErrEmptyReply = errors.New("empty ai reply")
	ErrUpstream   = errors.New("upstream request failed")

	ErrMissingCredentials = errors.New("missing required credentials")
)
