package domain

import "fmt"

// SessionState is the primary state of a pass-sequence session. Legality of
// the pass lists and freshness of the built binary are both derived from it.
type SessionState int

const (
	StateFresh SessionState = iota
	StateListsInvalid
	StateBinaryStale
	StateBinaryFresh
)

func (s SessionState) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateListsInvalid:
		return "lists-invalid"
	case StateBinaryStale:
		return "lists-valid-binary-stale"
	case StateBinaryFresh:
		return "lists-valid-binary-fresh"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Event int

const (
	// EventListsLegal follows a mutation after which every target list is legal.
	EventListsLegal Event = iota + 1
	// EventListsIllegal follows a mutation that left some target list illegal.
	EventListsIllegal
	// EventBuilt records a successful pass-list build.
	EventBuilt
)

func (e Event) String() string {
	switch e {
	case EventListsLegal:
		return "lists-legal"
	case EventListsIllegal:
		return "lists-illegal"
	case EventBuilt:
		return "built"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Transition is a single allowed edge in the session state machine.
type Transition struct {
	From  SessionState
	To    SessionState
	Event Event
}

var transitionsTable = []Transition{
	// Mutations
	{From: StateFresh, To: StateBinaryStale, Event: EventListsLegal},
	{From: StateListsInvalid, To: StateBinaryStale, Event: EventListsLegal},
	{From: StateBinaryStale, To: StateBinaryStale, Event: EventListsLegal},
	{From: StateBinaryFresh, To: StateBinaryStale, Event: EventListsLegal},

	{From: StateFresh, To: StateListsInvalid, Event: EventListsIllegal},
	{From: StateListsInvalid, To: StateListsInvalid, Event: EventListsIllegal},
	{From: StateBinaryStale, To: StateListsInvalid, Event: EventListsIllegal},
	{From: StateBinaryFresh, To: StateListsInvalid, Event: EventListsIllegal},

	// Builds
	{From: StateFresh, To: StateBinaryFresh, Event: EventBuilt},
	{From: StateBinaryStale, To: StateBinaryFresh, Event: EventBuilt},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from SessionState, ev Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// Lifecycle tracks the session state. A fresh session is legal unless it
// targets an under-specified slot.
type Lifecycle struct {
	state        SessionState
	initialLegal bool
}

func NewLifecycle(targets TargetSlots) Lifecycle {
	return Lifecycle{state: StateFresh, initialLegal: !targets.UnderSpecified()}
}

func (l Lifecycle) State() SessionState {
	return l.state
}

func (l Lifecycle) ListsValid() bool {
	switch l.state {
	case StateFresh:
		return l.initialLegal
	case StateBinaryStale, StateBinaryFresh:
		return true
	default:
		return false
	}
}

func (l Lifecycle) BinaryValid() bool {
	return l.state == StateBinaryFresh
}

// Fire applies ev. Builds are rejected while the lists are illegal.
func (l *Lifecycle) Fire(ev Event) (Transition, error) {
	if ev == EventBuilt && !l.ListsValid() {
		return Transition{}, fmt.Errorf("session %s: cannot apply %s to illegal pass lists", l.state, ev)
	}

	tr, ok := TransitionFor(l.state, ev)
	if !ok {
		return Transition{}, fmt.Errorf("session %s: no transition for %s", l.state, ev)
	}
	l.state = tr.To

	return tr, nil
}
