package app

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/usecase"
)

// Exit codes let shell callers branch on the failure class without
// parsing log output.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitInvalidArgs       = 2
	ExitUnknownDivision   = 3
	ExitThresholdExceeded = 4
	ExitMalformedInput    = 5
)

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case crerr.Is(err, usecase.ErrInvalidArgument):
		return ExitInvalidArgs
	case crerr.Is(err, usecase.ErrUnknownDivision):
		return ExitUnknownDivision
	case crerr.Is(err, usecase.ErrThresholdExceeded):
		return ExitThresholdExceeded
	case crerr.Is(err, usecase.ErrMalformedInput):
		return ExitMalformedInput
	default:
		return ExitFailure
	}
}
