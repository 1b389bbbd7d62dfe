package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrEmptyAction        = fmt.Errorf("%w: empty action", ErrInvalidArgument)
	ErrAmbiguousSlot      = fmt.Errorf("%w: ambiguous target slot", ErrInvalidArgument)
	ErrUnknownPass        = fmt.Errorf("%w: unknown pass", ErrInvalidArgument)
	ErrInvalidSlot        = fmt.Errorf("%w: invalid slot", ErrInvalidArgument)
	ErrInvalidBenchmark   = fmt.Errorf("%w: invalid benchmark", ErrInvalidArgument)
	ErrUnknownObservation = fmt.Errorf("%w: unknown observation space", ErrNotFound)
	ErrSessionNotFound    = fmt.Errorf("%w: session", ErrNotFound)
	ErrEpisodeNotFound    = fmt.Errorf("%w: episode", ErrNotFound)
)
