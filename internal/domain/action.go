package domain

import (
	"fmt"
	"strings"
)

const (
	// NoOpPassName is the reserved action that leaves the session untouched.
	NoOpPassName = "none_pass"
	// FrontDirective asks for the pass to be inserted at the start of its list.
	FrontDirective = ">"
	// SlotSeparator introduces an explicit slot override: "<pass>?<slot>".
	SlotSeparator = "?"
)

// Action is a decoded action token of the form [>]<pass>[?<slot>].
type Action struct {
	Front bool
	Name  string
	// Slot is SlotNone when the token carries no slot override.
	Slot Slot
}

// Pass is one entry handed to the pass list store.
type Pass struct {
	Name  string
	Front bool
}

func ParseAction(raw string) (Action, error) {
	if raw == "" {
		return Action{}, ErrEmptyAction
	}

	var action Action
	body := raw
	if strings.HasPrefix(body, FrontDirective) {
		action.Front = true
		body = strings.TrimPrefix(body, FrontDirective)
	}

	if idx := strings.LastIndex(body, SlotSeparator); idx >= 0 {
		slot, err := ParseSlot(body[idx+len(SlotSeparator):])
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", raw, err)
		}
		action.Slot = slot
		body = body[:idx]
	}

	if body == "" {
		return Action{}, fmt.Errorf("%w: action %q has no pass name", ErrInvalidArgument, raw)
	}
	action.Name = body

	return action, nil
}

// IsNoOpToken reports whether raw is the reserved no-op pass, with or without
// the front directive. The match is exact: a slot-qualified none_pass is an
// ordinary pass name.
func IsNoOpToken(raw string) bool {
	return strings.TrimPrefix(raw, FrontDirective) == NoOpPassName
}

func (a Action) Qualified() bool {
	return a.Slot != SlotNone
}

func (a Action) Pass() Pass {
	return Pass{Name: a.Name, Front: a.Front}
}

func (a Action) String() string {
	var b strings.Builder
	if a.Front {
		b.WriteString(FrontDirective)
	}
	b.WriteString(a.Name)
	if a.Qualified() {
		b.WriteString(SlotSeparator)
		b.WriteString(a.Slot.String())
	}
	return b.String()
}
