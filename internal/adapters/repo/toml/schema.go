package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Episodes []episodeSchema `toml:"episodes"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported history schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type episodeSchema struct {
	ID         string              `toml:"id"`
	Benchmark  string              `toml:"benchmark"`
	Targets    string              `toml:"targets"`
	Steps      int                 `toml:"steps"`
	Lists      map[string][]string `toml:"lists,omitempty"`
	Size       *int64              `toml:"size,omitempty"`
	Runtime    *float64            `toml:"runtime,omitempty"`
	Baseline   *baselineSchema     `toml:"baseline,omitempty"`
	RecordedAt string              `toml:"recorded_at"`
}

type baselineSchema struct {
	Size    int64   `toml:"size"`
	Runtime float64 `toml:"runtime"`
}
