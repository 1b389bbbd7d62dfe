package catalog

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Slots   []slotSchema `toml:"slots"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	for i := range s.Slots {
		for j := range s.Slots[i].Passes {
			if s.Slots[i].Passes[j].Max == 0 {
				s.Slots[i].Passes[j].Max = 1
			}
		}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported pass catalog schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type slotSchema struct {
	ID       int          `toml:"id"`
	Default  []string     `toml:"default,omitempty"`
	Required []string     `toml:"required,omitempty"`
	Passes   []passSchema `toml:"passes"`
}

type passSchema struct {
	Name     string   `toml:"name"`
	Requires []string `toml:"requires,omitempty"`
	Max      int      `toml:"max,omitempty"`
}
