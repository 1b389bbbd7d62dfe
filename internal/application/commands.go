package application

type StartSessionCommand struct {
	BenchmarkURI string
}

type ApplyActionCommand struct {
	SessionID string
	Action    string
}

type ObserveCommand struct {
	SessionID   string
	Observation string
}

type EndSessionCommand struct {
	SessionID string
	// Record saves the episode to the ledger.
	Record bool
}

// RunEpisodeCommand drives a whole session: apply every action in order,
// then take the requested observations.
type RunEpisodeCommand struct {
	BenchmarkURI string
	Actions      []string
	Observations []string
	Record       bool
}
