package application

import "github.com/bnema/gccpr/internal/domain"

type SessionInfo struct {
	ID        string
	Benchmark domain.Benchmark
	WorkDir   string
	// ActionSpace maps every target slot to the passes it accepts first.
	ActionSpace map[domain.Slot][]string
}

type SpacesView struct {
	ActionSpace  map[domain.Slot][]string
	Observations []domain.ObservationSpec
}

type StepReport struct {
	Action string
	Result StepResult
}

type EpisodeReport struct {
	Episode      domain.Episode
	Steps        []StepReport
	Observations []domain.Observation
	// Stopped is set when the episode ended before every action was applied.
	Stopped bool
}
