package application

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const (
	buildDirName    = "build"
	baselineDirName = "baseline"
)

// measurements holds values memoized for the current binary. They exist only
// while the session is in StateBinaryFresh.
type measurements struct {
	artifact *ports.Artifact
	size     *int64
	runtime  *float64
}

// baseline is filled once per session; fixed descriptor values are copied in
// at construction.
type baseline struct {
	size    *int64
	runtime *float64
}

func (b baseline) complete() bool {
	return b.size != nil && b.runtime != nil
}

func (s *Session) measuredSize(ctx context.Context) (int64, error) {
	if s.cache.size != nil {
		return *s.cache.size, nil
	}

	artifact, err := s.ensureBuilt(ctx)
	if err != nil {
		return 0, err
	}

	size, err := s.toolchain.Size(ctx, artifact)
	if err != nil {
		return 0, fmt.Errorf("measure size: %w", err)
	}
	s.recorder.MeasurementTaken(domain.ObservationSize)
	s.cache.size = &size

	return size, nil
}

func (s *Session) measuredRuntime(ctx context.Context) (float64, error) {
	if s.cache.runtime != nil {
		return *s.cache.runtime, nil
	}

	artifact, err := s.ensureBuilt(ctx)
	if err != nil {
		return 0, err
	}

	elapsed, err := s.toolchain.Run(ctx, artifact, s.benchmark.Run)
	if err != nil {
		return 0, fmt.Errorf("measure runtime: %w", err)
	}
	s.recorder.MeasurementTaken(domain.ObservationRuntime)

	seconds := elapsed.Seconds()
	s.cache.runtime = &seconds

	return seconds, nil
}

// ensureBuilt builds the pass-list binary at most once per invalidation
// window. A failed build leaves the binary stale so the next request retries.
func (s *Session) ensureBuilt(ctx context.Context) (ports.Artifact, error) {
	if s.lifecycle.BinaryValid() && s.cache.artifact != nil {
		return *s.cache.artifact, nil
	}

	passLists := make(map[domain.Slot]string, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		passLists[slot] = s.store.Path(slot)
	}

	start := s.clock.Now()
	artifact, err := s.toolchain.Build(ctx, ports.BuildRequest{
		Kind:      ports.BuildPassList,
		Benchmark: s.benchmark,
		Dir:       filepath.Join(s.workDir, buildDirName),
		PassLists: passLists,
	})
	elapsed := s.clock.Since(start)
	s.recorder.BuildFinished(ports.BuildPassList, elapsed, err)
	if err != nil {
		s.logger.Warn("pass list build failed", "error", err)
		return ports.Artifact{}, fmt.Errorf("build pass lists: %w", err)
	}

	if err := s.fire(domain.EventBuilt); err != nil {
		return ports.Artifact{}, err
	}
	s.cache.artifact = &artifact
	s.logger.Debug("pass list build finished", "elapsed", elapsed)

	return artifact, nil
}

// computeBaseline fills the missing baseline values with one reference build.
// It runs under preserveState so the pass-list binary state is untouched.
func (s *Session) computeBaseline(ctx context.Context) (domain.Measurement, error) {
	if s.base.complete() {
		return domain.Measurement{Size: *s.base.size, Runtime: *s.base.runtime}, nil
	}

	err := s.preserveState(func() error {
		start := s.clock.Now()
		artifact, err := s.toolchain.Build(ctx, ports.BuildRequest{
			Kind:      ports.BuildBaseline,
			Benchmark: s.benchmark,
			Dir:       filepath.Join(s.workDir, baselineDirName),
		})
		s.recorder.BuildFinished(ports.BuildBaseline, s.clock.Since(start), err)
		if err != nil {
			return fmt.Errorf("build baseline: %w", err)
		}

		computed := s.base
		if computed.size == nil {
			size, err := s.toolchain.Size(ctx, artifact)
			if err != nil {
				return fmt.Errorf("measure baseline size: %w", err)
			}
			s.recorder.MeasurementTaken(domain.ObservationBaseSize)
			computed.size = &size
		}
		if computed.runtime == nil {
			elapsed, err := s.toolchain.Run(ctx, artifact, s.benchmark.Run)
			if err != nil {
				return fmt.Errorf("measure baseline runtime: %w", err)
			}
			s.recorder.MeasurementTaken(domain.ObservationBaseRuntime)
			seconds := elapsed.Seconds()
			computed.runtime = &seconds
		}

		s.base = computed
		return nil
	})
	if err != nil {
		s.logger.Warn("baseline failed", "error", err)
		return domain.Measurement{}, err
	}

	s.logger.Info("baseline computed", "size", *s.base.size, "runtime", *s.base.runtime)
	return domain.Measurement{Size: *s.base.size, Runtime: *s.base.runtime}, nil
}

// preserveState runs fn and then restores the lifecycle and memoized
// measurements to their values before the call, whether fn failed or not.
func (s *Session) preserveState(fn func() error) error {
	lifecycle := s.lifecycle
	cache := s.cache
	defer func() {
		s.lifecycle = lifecycle
		s.cache = cache
	}()

	return fn()
}
