package services

import "errors"

// Errors shared across services. Entity/ownership misses are reported as
// pgx.ErrNoRows by the repositories and pass through untouched; handlers map
// them to 404 so a foreign record is indistinguishable from a missing one.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
