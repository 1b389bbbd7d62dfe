package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bnema/gccpr/internal/domain"
)

type measurementJSON struct {
	Size    int64   `json:"size"`
	Runtime float64 `json:"runtime"`
}

type episodeJSON struct {
	ID         string              `json:"id"`
	Benchmark  string              `json:"benchmark"`
	Targets    string              `json:"targets"`
	Steps      int                 `json:"steps"`
	Lists      map[string][]string `json:"lists"`
	Size       *int64              `json:"size,omitempty"`
	Runtime    *float64            `json:"runtime,omitempty"`
	Baseline   *measurementJSON    `json:"baseline,omitempty"`
	RecordedAt time.Time           `json:"recorded_at"`
}

func toEpisodeJSON(episode domain.Episode) episodeJSON {
	out := episodeJSON{
		ID:         string(episode.ID),
		Benchmark:  episode.Benchmark,
		Targets:    episode.Targets.String(),
		Steps:      episode.Steps,
		Lists:      slotMap(episode.Lists),
		Size:       episode.Size,
		Runtime:    episode.Runtime,
		RecordedAt: episode.RecordedAt,
	}
	if episode.Baseline != nil {
		out.Baseline = &measurementJSON{Size: episode.Baseline.Size, Runtime: episode.Baseline.Runtime}
	}
	return out
}

func slotMap(lists map[domain.Slot][]string) map[string][]string {
	out := make(map[string][]string, len(lists))
	for slot, passes := range lists {
		if passes == nil {
			passes = []string{}
		}
		out[slot.String()] = passes
	}
	return out
}

func observationMap(observations []domain.Observation) map[string]any {
	out := make(map[string]any, len(observations))
	for _, observation := range observations {
		out[observation.Kind.String()] = observation.Value()
	}
	return out
}

func formatObservation(observation domain.Observation) string {
	switch value := observation.Value().(type) {
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	case []string:
		if len(value) == 0 {
			return "(empty)"
		}
		return sanitizeForTerminal(strings.Join(value, " "))
	default:
		return fmt.Sprint(value)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
