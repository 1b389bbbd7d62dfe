package domain

import (
	"fmt"
	"strings"
	"time"
)

type EpisodeID string

// Episode is the record kept for a finished session.
type Episode struct {
	ID         EpisodeID
	Benchmark  string
	Targets    TargetSlots
	Lists      map[Slot][]string
	Steps      int
	Size       *int64
	Runtime    *float64
	Baseline   *Measurement
	RecordedAt time.Time
}

func (e Episode) Validate() error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.Benchmark) == "" {
		return fmt.Errorf("benchmark is required")
	}
	for slot := range e.Lists {
		if !slot.Valid() {
			return fmt.Errorf("list for %w %d", ErrInvalidSlot, slot)
		}
	}

	return nil
}

// Passes concatenates the target lists in target order.
func (e Episode) Passes() []string {
	passes := []string{}
	for _, slot := range e.Targets.Slots() {
		passes = append(passes, e.Lists[slot]...)
	}
	return passes
}
