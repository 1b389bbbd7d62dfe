package domain

import "fmt"

// ObservationKind is the closed set of observation spaces a session serves.
type ObservationKind int

const (
	ObservationRuntime ObservationKind = iota + 1
	ObservationSize
	ObservationBaseRuntime
	ObservationBaseSize
	ObservationPasses
)

// ObservationKinds lists every kind in wire order.
var ObservationKinds = []ObservationKind{
	ObservationRuntime,
	ObservationSize,
	ObservationBaseRuntime,
	ObservationBaseSize,
	ObservationPasses,
}

func (k ObservationKind) String() string {
	switch k {
	case ObservationRuntime:
		return "runtime"
	case ObservationSize:
		return "size"
	case ObservationBaseRuntime:
		return "base_runtime"
	case ObservationBaseSize:
		return "base_size"
	case ObservationPasses:
		return "passes"
	default:
		return fmt.Sprintf("observation(%d)", int(k))
	}
}

// ParseObservationKind decodes a wire name. It is the only place an unknown
// observation name can surface.
func ParseObservationKind(name string) (ObservationKind, error) {
	for _, kind := range ObservationKinds {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownObservation, name)
}

type ValueType string

const (
	ValueDouble  ValueType = "double"
	ValueInt64   ValueType = "int64"
	ValueStrings ValueType = "string_list"
)

// ObservationSpec describes an observation space to clients.
type ObservationSpec struct {
	Kind              ObservationKind
	Type              ValueType
	Deterministic     bool
	PlatformDependent bool
	Default           Observation
}

func (k ObservationKind) Spec() ObservationSpec {
	switch k {
	case ObservationRuntime, ObservationBaseRuntime:
		return ObservationSpec{Kind: k, Type: ValueDouble, PlatformDependent: true, Default: RuntimeObservation(k, 0)}
	case ObservationSize, ObservationBaseSize:
		return ObservationSpec{Kind: k, Type: ValueInt64, Deterministic: true, PlatformDependent: true, Default: SizeObservation(k, 0)}
	default:
		return ObservationSpec{Kind: ObservationPasses, Type: ValueStrings, Deterministic: true, Default: PassesObservation(nil)}
	}
}

// Observation holds exactly one value matching its kind's ValueType.
type Observation struct {
	Kind    ObservationKind
	Double  float64
	Int64   int64
	Strings []string
}

func RuntimeObservation(kind ObservationKind, seconds float64) Observation {
	return Observation{Kind: kind, Double: seconds}
}

func SizeObservation(kind ObservationKind, bytes int64) Observation {
	return Observation{Kind: kind, Int64: bytes}
}

func PassesObservation(passes []string) Observation {
	if passes == nil {
		passes = []string{}
	}
	return Observation{Kind: ObservationPasses, Strings: passes}
}

// Value returns the populated field as an untyped value for encoders.
func (o Observation) Value() any {
	switch o.Kind.Spec().Type {
	case ValueDouble:
		return o.Double
	case ValueInt64:
		return o.Int64
	default:
		return o.Strings
	}
}
