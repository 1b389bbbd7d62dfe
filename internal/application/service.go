package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const workDirMode = 0o755

type ServiceDeps struct {
	Oracle    ports.LegalityOracle
	Toolchain ports.Toolchain
	Episodes  ports.EpisodeRepository
	// NewStore opens the pass list store for a session directory.
	NewStore func(dir string) ports.PassListStore
	Recorder ports.Recorder
	Clock    ports.Clock
	Logger   *slog.Logger
	WorkRoot string
	// KeepWorkDirs leaves session directories on disk after End.
	KeepWorkDirs bool
}

// Service owns every live session. Sessions share the oracle and toolchain
// and nothing else; each gets its own working directory.
type Service struct {
	deps  ServiceDeps
	newID func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(deps ServiceDeps) *Service {
	if deps.Recorder == nil {
		deps.Recorder = ports.NopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.WorkRoot == "" {
		deps.WorkRoot = filepath.Join(os.TempDir(), "gccpr")
	}

	return &Service{
		deps:     deps,
		newID:    uuid.NewString,
		sessions: map[string]*Session{},
	}
}

func (s *Service) Start(ctx context.Context, cmd StartSessionCommand) (SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return SessionInfo{}, err
	}

	benchmark, err := domain.ParseBenchmarkURI(cmd.BenchmarkURI)
	if err != nil {
		return SessionInfo{}, err
	}

	id := s.newID()
	workDir := filepath.Join(s.deps.WorkRoot, id)
	if err := os.MkdirAll(workDir, workDirMode); err != nil {
		return SessionInfo{}, fmt.Errorf("create session directory: %w", err)
	}

	session, err := NewSession(ctx, id, benchmark, workDir, SessionDeps{
		Store:     s.deps.NewStore(workDir),
		Oracle:    s.deps.Oracle,
		Toolchain: s.deps.Toolchain,
		Recorder:  s.deps.Recorder,
		Clock:     s.deps.Clock,
		Logger:    s.deps.Logger,
	})
	if err != nil {
		if cleanupErr := s.removeWorkDir(workDir); cleanupErr != nil {
			return SessionInfo{}, errors.Join(err, cleanupErr)
		}
		return SessionInfo{}, err
	}

	space, err := s.initialSpace(ctx, benchmark.Targets)
	if err != nil {
		return SessionInfo{}, errors.Join(err, s.removeWorkDir(workDir))
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.deps.Logger.Info("session started", "session", id, "benchmark", benchmark.Name, "targets", benchmark.Targets.String())

	return SessionInfo{ID: id, Benchmark: benchmark, WorkDir: workDir, ActionSpace: space}, nil
}

func (s *Service) Apply(ctx context.Context, cmd ApplyActionCommand) (StepResult, error) {
	session, err := s.session(cmd.SessionID)
	if err != nil {
		return StepResult{}, err
	}

	return session.ApplyAction(ctx, cmd.Action)
}

func (s *Service) Observe(ctx context.Context, cmd ObserveCommand) (domain.Observation, error) {
	kind, err := domain.ParseObservationKind(cmd.Observation)
	if err != nil {
		return domain.Observation{}, err
	}

	session, err := s.session(cmd.SessionID)
	if err != nil {
		return domain.Observation{}, err
	}

	return session.Observe(ctx, kind)
}

// End removes the session and returns its episode record, saving it when
// asked to. A failed snapshot or save puts the session back so End can be
// retried.
func (s *Service) End(ctx context.Context, cmd EndSessionCommand) (domain.Episode, error) {
	s.mu.Lock()
	session, ok := s.sessions[cmd.SessionID]
	if ok {
		delete(s.sessions, cmd.SessionID)
	}
	s.mu.Unlock()
	if !ok {
		return domain.Episode{}, fmt.Errorf("%w %q", domain.ErrSessionNotFound, cmd.SessionID)
	}

	episode, err := session.Snapshot(ctx)
	if err != nil {
		s.restore(cmd.SessionID, session)
		return domain.Episode{}, err
	}

	if cmd.Record && s.deps.Episodes != nil {
		if err := s.deps.Episodes.Save(ctx, episode); err != nil {
			s.restore(cmd.SessionID, session)
			return domain.Episode{}, fmt.Errorf("record episode: %w", err)
		}
	}

	if !s.deps.KeepWorkDirs {
		if err := s.removeWorkDir(session.WorkDir()); err != nil {
			return episode, err
		}
	}

	s.deps.Logger.Info("session ended", "session", cmd.SessionID, "steps", episode.Steps, "recorded", cmd.Record)

	return episode, nil
}

// RunEpisode applies actions until they run out or the episode ends, then
// takes the requested observations and ends the session.
func (s *Service) RunEpisode(ctx context.Context, cmd RunEpisodeCommand) (EpisodeReport, error) {
	kinds := make([]domain.ObservationKind, 0, len(cmd.Observations))
	for _, name := range cmd.Observations {
		kind, err := domain.ParseObservationKind(name)
		if err != nil {
			return EpisodeReport{}, err
		}
		kinds = append(kinds, kind)
	}

	info, err := s.Start(ctx, StartSessionCommand{BenchmarkURI: cmd.BenchmarkURI})
	if err != nil {
		return EpisodeReport{}, err
	}

	report, runErr := s.runEpisode(ctx, info.ID, cmd.Actions, kinds)
	episode, endErr := s.End(ctx, EndSessionCommand{SessionID: info.ID, Record: cmd.Record && runErr == nil})
	if err := errors.Join(runErr, endErr); err != nil {
		return EpisodeReport{}, err
	}
	report.Episode = episode

	return report, nil
}

func (s *Service) runEpisode(ctx context.Context, id string, actions []string, kinds []domain.ObservationKind) (EpisodeReport, error) {
	session, err := s.session(id)
	if err != nil {
		return EpisodeReport{}, err
	}

	report := EpisodeReport{Steps: make([]StepReport, 0, len(actions))}
	for i, action := range actions {
		result, err := session.ApplyAction(ctx, action)
		if err != nil {
			return EpisodeReport{}, fmt.Errorf("apply action %d %q: %w", i+1, action, err)
		}
		report.Steps = append(report.Steps, StepReport{Action: action, Result: result})
		if result.EndOfEpisode {
			report.Stopped = i < len(actions)-1
			break
		}
	}

	for _, kind := range kinds {
		observation, err := session.Observe(ctx, kind)
		if err != nil {
			return EpisodeReport{}, fmt.Errorf("observe %s: %w", kind, err)
		}
		report.Observations = append(report.Observations, observation)
	}

	return report, nil
}

// Spaces lists the first legal passes of every slot and the observation
// spaces a session serves.
func (s *Service) Spaces(ctx context.Context) (SpacesView, error) {
	space, err := s.initialSpace(ctx, domain.DefaultTargetSlots())
	if err != nil {
		return SpacesView{}, err
	}

	specs := make([]domain.ObservationSpec, 0, len(domain.ObservationKinds))
	for _, kind := range domain.ObservationKinds {
		specs = append(specs, kind.Spec())
	}

	return SpacesView{ActionSpace: space, Observations: specs}, nil
}

// Sessions returns the ids of live sessions in sorted order.
func (s *Service) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (s *Service) History(ctx context.Context) ([]domain.Episode, error) {
	if s.deps.Episodes == nil {
		return []domain.Episode{}, nil
	}

	episodes, err := s.deps.Episodes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	return episodes, nil
}

func (s *Service) Episode(ctx context.Context, id domain.EpisodeID) (domain.Episode, error) {
	if s.deps.Episodes == nil {
		return domain.Episode{}, fmt.Errorf("%w %q", domain.ErrEpisodeNotFound, id)
	}

	return s.deps.Episodes.GetByID(ctx, id)
}

func (s *Service) restore(id string, session *Session) {
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", domain.ErrSessionNotFound, id)
	}

	return session, nil
}

func (s *Service) initialSpace(ctx context.Context, targets domain.TargetSlots) (map[domain.Slot][]string, error) {
	space := make(map[domain.Slot][]string, len(targets.Slots()))
	for _, slot := range targets.Slots() {
		candidates, err := s.deps.Oracle.CandidateNextActions(ctx, nil, slot)
		if err != nil {
			return nil, fmt.Errorf("initial action space for slot %s: %w", slot, err)
		}
		space[slot] = candidates
	}

	return space, nil
}

func (s *Service) removeWorkDir(dir string) error {
	if s.deps.KeepWorkDirs {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}

	return nil
}
