package ports

import (
	"time"

	"github.com/bnema/gccpr/internal/domain"
)

// Recorder receives session metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ActionApplied(result string)
	BuildFinished(kind BuildKind, elapsed time.Duration, err error)
	MeasurementTaken(kind domain.ObservationKind)
}

type NopRecorder struct{}

func (NopRecorder) ActionApplied(string)                          {}
func (NopRecorder) BuildFinished(BuildKind, time.Duration, error) {}
func (NopRecorder) MeasurementTaken(domain.ObservationKind)       {}
