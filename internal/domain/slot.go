package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot identifies one of the three pass lists consumed by the reordering plugin.
type Slot uint8

const (
	// SlotNone marks a session that targets no slot at all.
	SlotNone Slot = 0

	Slot1 Slot = 1
	Slot2 Slot = 2
	Slot3 Slot = 3
)

// AllSlots lists the real slots in plugin order.
var AllSlots = []Slot{Slot1, Slot2, Slot3}

func (s Slot) Valid() bool {
	return s >= Slot1 && s <= Slot3
}

func (s Slot) String() string {
	return strconv.Itoa(int(s))
}

func ParseSlot(raw string) (Slot, error) {
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.Atoi(trimmed)
	if err != nil || value < int(Slot1) || value > int(Slot3) {
		return SlotNone, fmt.Errorf("%w %q", ErrInvalidSlot, raw)
	}

	return Slot(value), nil
}

// TargetSlots is the ordered set of slots a session mutates.
type TargetSlots struct {
	slots []Slot
	none  bool
}

func DefaultTargetSlots() TargetSlots {
	return NewTargetSlots(AllSlots...)
}

// NoTargetSlots is the sentinel target set of a session that mutates no slot.
func NoTargetSlots() TargetSlots {
	return TargetSlots{none: true}
}

// NewTargetSlots keeps the first occurrence of every valid slot.
func NewTargetSlots(slots ...Slot) TargetSlots {
	result := make([]Slot, 0, len(slots))
	seen := make(map[Slot]struct{}, len(slots))
	for _, slot := range slots {
		if !slot.Valid() {
			continue
		}
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		result = append(result, slot)
	}
	if len(result) == 0 {
		return NoTargetSlots()
	}

	return TargetSlots{slots: result}
}

// ParseTargetSlots reads the benchmark "list" parameter. An empty list means
// every slot; "none" or "0" selects the sentinel set.
func ParseTargetSlots(values []string) (TargetSlots, error) {
	if len(values) == 0 {
		return DefaultTargetSlots(), nil
	}

	slots := make([]Slot, 0, len(values))
	for _, value := range values {
		for _, field := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			switch strings.ToLower(field) {
			case "none", "0":
				if len(values) > 1 || len(slots) > 0 {
					return TargetSlots{}, fmt.Errorf("%w: %q cannot be combined with other slots", ErrInvalidSlot, field)
				}
				return NoTargetSlots(), nil
			}

			slot, err := ParseSlot(field)
			if err != nil {
				return TargetSlots{}, err
			}
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return DefaultTargetSlots(), nil
	}

	return NewTargetSlots(slots...), nil
}

// Slots returns the real target slots in configured order.
func (t TargetSlots) Slots() []Slot {
	return append([]Slot(nil), t.slots...)
}

func (t TargetSlots) IsNone() bool {
	return t.none || len(t.slots) == 0
}

func (t TargetSlots) Contains(slot Slot) bool {
	for _, s := range t.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Sole reports the slot an unqualified action is routed to. The sentinel set
// yields SlotNone, which lets the oracle pick the owning slot.
func (t TargetSlots) Sole() (Slot, bool) {
	if t.IsNone() {
		return SlotNone, true
	}
	if len(t.slots) == 1 {
		return t.slots[0], true
	}
	return SlotNone, false
}

// UnderSpecified reports whether slot 3 is targeted. Its empty list is not a
// usable pipeline, so such sessions start out illegal.
func (t TargetSlots) UnderSpecified() bool {
	return t.Contains(Slot3)
}

func (t TargetSlots) String() string {
	if t.IsNone() {
		return "none"
	}

	parts := make([]string, 0, len(t.slots))
	for _, slot := range t.slots {
		parts = append(parts, slot.String())
	}
	return strings.Join(parts, ",")
}
