package usecase

import "github.com/cockroachdb/errors"

// Failure classes of the pipeline. Call sites wrap with detail and keep
// the class attached via errors.Mark so the CLI can map classes to exit
// codes with errors.Is.
var (
	ErrUnknownDivision    = errors.New("unknown division")
	ErrEmptyUpstream      = errors.New("upstream returned no teams")
	ErrTransientHTTP      = errors.New("transient upstream failure")
	ErrRateLimited        = errors.New("upstream rate limited")
	ErrProfileNotFound    = errors.New("team profile not found")
	ErrMatchSchemaInvalid = errors.New("match row schema invalid")
	ErrThresholdExceeded  = errors.New("failed team fraction above threshold")
	ErrMalformedInput     = errors.New("malformed input file")
	ErrInvalidArgument    = errors.New("invalid argument")
)
