package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const (
	resultMutated  = "mutated"
	resultNoOp     = "noop"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// StepResult is returned by every accepted action. ActionSpace is nil when
// the mutated slot admits no further pass, which ends the episode.
type StepResult struct {
	EndOfEpisode bool
	ActionSpace  []string
	Truncated    bool
}

type SessionDeps struct {
	Store     ports.PassListStore
	Oracle    ports.LegalityOracle
	Toolchain ports.Toolchain
	Recorder  ports.Recorder
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Session drives one benchmark through pass-list mutations and lazily built
// measurements. Calls are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	benchmark domain.Benchmark
	workDir   string

	store     ports.PassListStore
	oracle    ports.LegalityOracle
	toolchain ports.Toolchain
	recorder  ports.Recorder
	clock     ports.Clock
	logger    *slog.Logger

	lifecycle domain.Lifecycle
	cache     measurements
	base      baseline
	steps     int
}

// NewSession seeds the pass lists: target slots start empty and the others
// receive the oracle's default sequence.
func NewSession(ctx context.Context, id string, benchmark domain.Benchmark, workDir string, deps SessionDeps) (*Session, error) {
	if deps.Store == nil || deps.Oracle == nil || deps.Toolchain == nil {
		return nil, errors.New("session requires a pass list store, an oracle and a toolchain")
	}
	if deps.Recorder == nil {
		deps.Recorder = ports.NopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	seeds := make(map[domain.Slot][]string, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		if benchmark.Targets.Contains(slot) {
			seeds[slot] = []string{}
			continue
		}

		sequence, err := deps.Oracle.DefaultSequence(ctx, slot)
		if err != nil {
			return nil, fmt.Errorf("default sequence for slot %s: %w", slot, err)
		}
		seeds[slot] = sequence
	}
	if err := deps.Store.Reset(ctx, seeds); err != nil {
		return nil, fmt.Errorf("seed pass lists: %w", err)
	}

	return &Session{
		id:        id,
		benchmark: benchmark,
		workDir:   workDir,
		store:     deps.Store,
		oracle:    deps.Oracle,
		toolchain: deps.Toolchain,
		recorder:  deps.Recorder,
		clock:     deps.Clock,
		logger:    deps.Logger.With("session", id),
		lifecycle: domain.NewLifecycle(benchmark.Targets),
		base:      baseline{size: benchmark.BaseSize, runtime: benchmark.BaseRuntime},
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Benchmark() domain.Benchmark {
	return s.benchmark
}

func (s *Session) WorkDir() string {
	return s.workDir
}

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lifecycle.State()
}

func (s *Session) ListsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lifecycle.ListsValid()
}

func (s *Session) ApplyAction(ctx context.Context, raw string) (StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	if raw == "" {
		s.recorder.ActionApplied(resultRejected)
		return StepResult{}, domain.ErrEmptyAction
	}
	if domain.IsNoOpToken(raw) {
		s.recorder.ActionApplied(resultNoOp)
		return StepResult{}, nil
	}

	slot, pass, err := s.resolve(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			s.recorder.ActionApplied(resultRejected)
		} else {
			s.recorder.ActionApplied(resultFailed)
		}
		return StepResult{}, err
	}

	result, err := s.mutate(ctx, slot, pass)
	if err != nil {
		s.recorder.ActionApplied(resultFailed)
		return StepResult{}, err
	}
	s.recorder.ActionApplied(resultMutated)
	s.logger.Debug("action applied", "action", raw, "slot", slot.String(), "state", s.lifecycle.State().String(), "end", result.EndOfEpisode)

	return result, nil
}

// resolve decodes raw and asks the oracle which slot owns the pass. A slot
// suffix outside the targets forces front insertion.
func (s *Session) resolve(ctx context.Context, raw string) (domain.Slot, domain.Pass, error) {
	action, err := domain.ParseAction(raw)
	if err != nil {
		return domain.SlotNone, domain.Pass{}, err
	}

	hint := action.Slot
	if action.Qualified() {
		if !s.benchmark.Targets.Contains(action.Slot) {
			action.Front = true
		}
	} else {
		sole, ok := s.benchmark.Targets.Sole()
		if !ok {
			return domain.SlotNone, domain.Pass{}, fmt.Errorf("%w: action %q needs a ?<slot> suffix for targets %s", domain.ErrAmbiguousSlot, raw, s.benchmark.Targets)
		}
		hint = sole
	}

	slot, err := s.oracle.PassSlot(ctx, action.Name, hint)
	if err != nil {
		return domain.SlotNone, domain.Pass{}, fmt.Errorf("resolve pass %q: %w", action.Name, err)
	}
	if !slot.Valid() {
		return domain.SlotNone, domain.Pass{}, fmt.Errorf("resolve pass %q: oracle returned %w %d", action.Name, domain.ErrInvalidSlot, slot)
	}

	return slot, action.Pass(), nil
}

// mutate writes the pass and recomputes legality in the same step. When the
// legality check fails the lists are treated as illegal.
func (s *Session) mutate(ctx context.Context, slot domain.Slot, pass domain.Pass) (StepResult, error) {
	if err := s.store.Append(ctx, slot, pass); err != nil {
		return StepResult{}, fmt.Errorf("append pass %q to slot %s: %w", pass.Name, slot, err)
	}
	s.steps++

	legal, legalErr := s.targetsLegal(ctx)
	event := domain.EventListsIllegal
	if legalErr == nil && legal {
		event = domain.EventListsLegal
	}
	if err := s.fire(event); err != nil {
		return StepResult{}, errors.Join(legalErr, err)
	}
	if legalErr != nil {
		return StepResult{}, legalErr
	}

	space, err := project(ctx, s.store, s.oracle, slot)
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{EndOfEpisode: space == nil, ActionSpace: space}, nil
}

func (s *Session) targetsLegal(ctx context.Context) (bool, error) {
	for _, slot := range s.benchmark.Targets.Slots() {
		sequence, err := s.store.Read(ctx, slot)
		if err != nil {
			return false, fmt.Errorf("read pass list %s: %w", slot, err)
		}

		legal, err := s.oracle.SequenceIsLegal(ctx, sequence, slot)
		if err != nil {
			return false, fmt.Errorf("check legality of slot %s: %w", slot, err)
		}
		if !legal {
			return false, nil
		}
	}

	return true, nil
}

// fire is the only place the lifecycle moves. Leaving StateBinaryFresh drops
// every memoized measurement.
func (s *Session) fire(ev domain.Event) error {
	tr, err := s.lifecycle.Fire(ev)
	if err != nil {
		return err
	}
	if tr.To != domain.StateBinaryFresh {
		s.cache = measurements{}
	}

	return nil
}

func (s *Session) Observe(ctx context.Context, kind domain.ObservationKind) (domain.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Observation{}, err
	}

	switch kind {
	case domain.ObservationPasses:
		passes, err := s.targetPasses(ctx)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.PassesObservation(passes), nil
	case domain.ObservationSize:
		if !s.lifecycle.ListsValid() {
			return kind.Spec().Default, nil
		}
		size, err := s.measuredSize(ctx)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.SizeObservation(kind, size), nil
	case domain.ObservationRuntime:
		if !s.lifecycle.ListsValid() {
			return kind.Spec().Default, nil
		}
		runtime, err := s.measuredRuntime(ctx)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.RuntimeObservation(kind, runtime), nil
	case domain.ObservationBaseSize:
		base, err := s.computeBaseline(ctx)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.SizeObservation(kind, base.Size), nil
	case domain.ObservationBaseRuntime:
		base, err := s.computeBaseline(ctx)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.RuntimeObservation(kind, base.Runtime), nil
	default:
		return domain.Observation{}, fmt.Errorf("%w %s", domain.ErrUnknownObservation, kind)
	}
}

func (s *Session) targetPasses(ctx context.Context) ([]string, error) {
	passes := []string{}
	for _, slot := range s.benchmark.Targets.Slots() {
		sequence, err := s.store.Read(ctx, slot)
		if err != nil {
			return nil, fmt.Errorf("read pass list %s: %w", slot, err)
		}
		passes = append(passes, sequence...)
	}

	return passes, nil
}

// Snapshot captures the session as an episode record without building or
// measuring anything new.
func (s *Session) Snapshot(ctx context.Context) (domain.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := make(map[domain.Slot][]string, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		sequence, err := s.store.Read(ctx, slot)
		if err != nil {
			return domain.Episode{}, fmt.Errorf("read pass list %s: %w", slot, err)
		}
		lists[slot] = sequence
	}

	episode := domain.Episode{
		ID:         domain.EpisodeID(s.id),
		Benchmark:  s.benchmark.URI,
		Targets:    s.benchmark.Targets,
		Lists:      lists,
		Steps:      s.steps,
		RecordedAt: s.clock.Now(),
	}
	if s.lifecycle.BinaryValid() {
		episode.Size = s.cache.size
		episode.Runtime = s.cache.runtime
	}
	if s.base.complete() {
		episode.Baseline = &domain.Measurement{Size: *s.base.size, Runtime: *s.base.runtime}
	}

	return episode, nil
}
