package application

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSeedsNonTargetSlotsWithDefaults(t *testing.T) {
	t.Parallel()

	session, store, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	assert.Empty(t, store.lists[domain.Slot1])
	assert.Equal(t, []string{"fre", "dce"}, store.lists[domain.Slot2])
	assert.Equal(t, []string{"ccp", "expand"}, store.lists[domain.Slot3])
	assert.Equal(t, domain.StateFresh, session.State())
	assert.True(t, session.ListsValid())
}

func TestSessionStartsIllegalWhenSlotThreeTargeted(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1, domain.Slot3))

	assert.False(t, session.ListsValid())

	size, err := session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size.Int64)
	assert.Zero(t, toolchain.builds)
}

func TestSessionStoredSequenceFollowsAcceptedActions(t *testing.T) {
	t.Parallel()

	session, store, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	for _, action := range []string{"p1", "p2", ">p0", "p3", ">px"} {
		_, err := session.ApplyAction(context.Background(), action)
		require.NoError(t, err, action)
	}

	assert.Equal(t, []string{"px", "p0", "p1", "p2", "p3"}, store.lists[domain.Slot1])
}

func TestSessionLegalityIsRecomputedAfterEveryMutation(t *testing.T) {
	t.Parallel()

	session, _, oracle, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1, domain.Slot2))
	oracle.legal = func(sequence []string, slot domain.Slot) bool {
		return slot != domain.Slot1 || !slices.Contains(sequence, "bad")
	}

	_, err := session.ApplyAction(context.Background(), "p1?1")
	require.NoError(t, err)
	assert.True(t, session.ListsValid())
	assert.Equal(t, domain.StateBinaryStale, session.State())

	_, err = session.ApplyAction(context.Background(), "bad?1")
	require.NoError(t, err)
	assert.False(t, session.ListsValid())
	assert.Equal(t, domain.StateListsInvalid, session.State())

	oracle.legal = func([]string, domain.Slot) bool { return true }
	_, err = session.ApplyAction(context.Background(), "fre?2")
	require.NoError(t, err)
	assert.True(t, session.ListsValid())
	assert.Equal(t, []domain.Slot{domain.Slot1, domain.Slot2}, oracle.legalSlots[len(oracle.legalSlots)-2:])
}

func TestSessionIllegalListsYieldZeroMeasurementsWithoutBuilding(t *testing.T) {
	t.Parallel()

	session, _, oracle, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))
	oracle.legal = func([]string, domain.Slot) bool { return false }

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)

	for range 2 {
		size, err := session.Observe(context.Background(), domain.ObservationSize)
		require.NoError(t, err)
		assert.Equal(t, domain.SizeObservation(domain.ObservationSize, 0), size)

		runtime, err := session.Observe(context.Background(), domain.ObservationRuntime)
		require.NoError(t, err)
		assert.Equal(t, domain.RuntimeObservation(domain.ObservationRuntime, 0), runtime)
	}

	assert.Zero(t, toolchain.builds)
	assert.Zero(t, toolchain.sizes)
	assert.Zero(t, toolchain.runs)
}

func TestSessionMeasurementsBuildOncePerWindow(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)

	for range 2 {
		size, err := session.Observe(context.Background(), domain.ObservationSize)
		require.NoError(t, err)
		assert.Equal(t, int64(4096), size.Int64)

		runtime, err := session.Observe(context.Background(), domain.ObservationRuntime)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, runtime.Double, 1e-9)
	}

	assert.Equal(t, 1, toolchain.builds)
	assert.Equal(t, 1, toolchain.sizes)
	assert.Equal(t, 1, toolchain.runs)
	assert.Equal(t, domain.StateBinaryFresh, session.State())
	assert.Equal(t, []string{"qsort.dat"}, toolchain.lastRunArgs)
	assert.Equal(t, map[domain.Slot]string{
		domain.Slot1: "/mem/list1",
		domain.Slot2: "/mem/list2",
		domain.Slot3: "/mem/list3",
	}, toolchain.lastPassLists)

	_, err = session.ApplyAction(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.StateBinaryStale, session.State())

	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, 2, toolchain.builds)
	assert.Equal(t, 2, toolchain.sizes)
}

func TestSessionScenarioSingleSlotLegalSequence(t *testing.T) {
	t.Parallel()

	session, _, oracle, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))
	oracle.legal = func(sequence []string, _ domain.Slot) bool {
		return len(sequence) == 0 || slices.Equal(sequence, []string{"p1", "p2"}) || slices.Equal(sequence, []string{"p1"})
	}

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	_, err = session.ApplyAction(context.Background(), "p2")
	require.NoError(t, err)

	assert.True(t, session.ListsValid())

	passes, err := session.Observe(context.Background(), domain.ObservationPasses)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, passes.Strings)

	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, 1, toolchain.builds)
}

func TestSessionSuffixOutsideTargetsForcesFrontInsertion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
	}{
		{name: "with directive", action: ">p1?2"},
		{name: "without directive", action: "p1?2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session, store, oracle, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

			_, err := session.ApplyAction(context.Background(), tt.action)
			require.NoError(t, err)

			assert.Equal(t, []string{"p1", "fre", "dce"}, store.lists[domain.Slot2])
			assert.Empty(t, store.lists[domain.Slot1])
			assert.Equal(t, domain.Slot2, oracle.lastHint)
		})
	}
}

func TestSessionSuffixInsideTargetsAppends(t *testing.T) {
	t.Parallel()

	session, store, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1, domain.Slot2))

	_, err := session.ApplyAction(context.Background(), "p1?2")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, store.lists[domain.Slot2])
}

func TestSessionNoOpLeavesStateAndCacheUntouched(t *testing.T) {
	t.Parallel()

	session, store, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	before := slices.Clone(store.lists[domain.Slot1])

	for _, token := range []string{"none_pass", ">none_pass"} {
		result, err := session.ApplyAction(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, StepResult{}, result)
	}

	assert.Equal(t, domain.StateBinaryFresh, session.State())
	assert.Equal(t, before, store.lists[domain.Slot1])

	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, 1, toolchain.builds)
	assert.Equal(t, 1, toolchain.sizes)
}

func TestSessionSlotQualifiedNoOpIsAnOrdinaryPass(t *testing.T) {
	t.Parallel()

	session, _, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "none_pass?1")
	require.ErrorIs(t, err, domain.ErrUnknownPass)
}

func TestSessionEmptyProjectionEndsEpisode(t *testing.T) {
	t.Parallel()

	session, _, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	result, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, result.EndOfEpisode)
	assert.Equal(t, []string{"p2", "p3"}, result.ActionSpace)

	_, err = session.ApplyAction(context.Background(), "p2")
	require.NoError(t, err)

	result, err = session.ApplyAction(context.Background(), "p3")
	require.NoError(t, err)
	assert.True(t, result.EndOfEpisode)
	assert.Nil(t, result.ActionSpace)
	assert.False(t, result.Truncated)
}

func TestSessionRejectsInvalidActionsWithoutChangingState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		targets domain.TargetSlots
		action  string
		wantErr error
	}{
		{name: "empty", targets: domain.NewTargetSlots(domain.Slot1), action: "", wantErr: domain.ErrEmptyAction},
		{name: "ambiguous", targets: domain.NewTargetSlots(domain.Slot1, domain.Slot2), action: "p1", wantErr: domain.ErrAmbiguousSlot},
		{name: "unknown pass", targets: domain.NewTargetSlots(domain.Slot1), action: "nope", wantErr: domain.ErrUnknownPass},
		{name: "pass outside hinted slot", targets: domain.NewTargetSlots(domain.Slot1), action: "ccp", wantErr: domain.ErrUnknownPass},
		{name: "bad slot suffix", targets: domain.NewTargetSlots(domain.Slot1), action: "p1?9", wantErr: domain.ErrInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session, store, _, _ := newTestSession(t, tt.targets)
			before := store.snapshot()

			_, err := session.ApplyAction(context.Background(), tt.action)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Equal(t, domain.StateFresh, session.State())
			assert.Equal(t, before, store.snapshot())
		})
	}
}

func TestSessionNoTargetsRoutesByOracle(t *testing.T) {
	t.Parallel()

	session, store, oracle, _ := newTestSession(t, domain.NoTargetSlots())

	assert.Equal(t, []string{"p1", "p2"}, store.lists[domain.Slot1])

	_, err := session.ApplyAction(context.Background(), "ccp")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotNone, oracle.lastHint)
	assert.Equal(t, []string{"ccp", "expand", "ccp"}, store.lists[domain.Slot3])
	assert.True(t, session.ListsValid())

	passes, err := session.Observe(context.Background(), domain.ObservationPasses)
	require.NoError(t, err)
	assert.Equal(t, []string{}, passes.Strings)
}

func TestSessionFailedBuildLeavesBinaryStaleAndRetries(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))
	toolchain.buildErr = errors.New("compiler crashed")

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)

	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.ErrorContains(t, err, "compiler crashed")
	assert.Equal(t, domain.StateBinaryStale, session.State())

	toolchain.buildErr = nil
	size, err := session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), size.Int64)
	assert.Equal(t, 2, toolchain.builds)
	assert.Equal(t, domain.StateBinaryFresh, session.State())
}

func TestSessionBaselineComputedOnceAndRestoresState(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	stateBefore := session.State()
	validBefore := session.ListsValid()

	first, err := session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)
	firstRuntime, err := session.Observe(context.Background(), domain.ObservationBaseRuntime)
	require.NoError(t, err)
	second, err := session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(5000), first.Int64)
	assert.InDelta(t, 2.0, firstRuntime.Double, 1e-9)
	assert.Equal(t, 1, toolchain.baselineBuilds)
	assert.Zero(t, toolchain.builds)
	assert.Equal(t, stateBefore, session.State())
	assert.Equal(t, validBefore, session.ListsValid())
	assert.Equal(t, []string{"-O2"}, toolchain.lastBaselineOpt)
}

func TestSessionBaselineDoesNotDisturbFreshBinary(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)

	_, err = session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)
	assert.Equal(t, domain.StateBinaryFresh, session.State())

	size, err := session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), size.Int64)
	assert.Equal(t, 1, toolchain.builds)
	assert.Equal(t, 1, toolchain.sizes-toolchain.baselineSizes)
}

func TestSessionBaselineUsesFixedValues(t *testing.T) {
	t.Parallel()

	baseSize := int64(1234)
	baseRuntime := 0.75
	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1), func(b *domain.Benchmark) {
		b.BaseSize = &baseSize
		b.BaseRuntime = &baseRuntime
	})

	size, err := session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)
	runtime, err := session.Observe(context.Background(), domain.ObservationBaseRuntime)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), size.Int64)
	assert.InDelta(t, 0.75, runtime.Double, 1e-9)
	assert.Zero(t, toolchain.baselineBuilds)
}

func TestSessionBaselineMeasuresOnlyMissingValue(t *testing.T) {
	t.Parallel()

	baseSize := int64(1234)
	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1), func(b *domain.Benchmark) {
		b.BaseSize = &baseSize
	})

	runtime, err := session.Observe(context.Background(), domain.ObservationBaseRuntime)
	require.NoError(t, err)
	size, err := session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, runtime.Double, 1e-9)
	assert.Equal(t, int64(1234), size.Int64)
	assert.Equal(t, 1, toolchain.baselineBuilds)
	assert.Zero(t, toolchain.baselineSizes)
}

func TestSessionBaselineFailureKeepsPrimaryState(t *testing.T) {
	t.Parallel()

	session, _, _, toolchain := newTestSession(t, domain.NewTargetSlots(domain.Slot1))
	toolchain.baselineErr = errors.New("reference build failed")

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)

	_, err = session.Observe(context.Background(), domain.ObservationBaseSize)
	require.ErrorContains(t, err, "reference build failed")
	assert.Equal(t, domain.StateBinaryFresh, session.State())

	toolchain.baselineErr = nil
	_, err = session.Observe(context.Background(), domain.ObservationBaseSize)
	require.NoError(t, err)
	assert.Equal(t, 2, toolchain.baselineBuilds)
}

func TestSessionObserveRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	session, _, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.Observe(context.Background(), domain.ObservationKind(99))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionSnapshotCarriesMemoizedValues(t *testing.T) {
	t.Parallel()

	session, _, _, _ := newTestSession(t, domain.NewTargetSlots(domain.Slot1))

	_, err := session.ApplyAction(context.Background(), "p1")
	require.NoError(t, err)
	_, err = session.Observe(context.Background(), domain.ObservationSize)
	require.NoError(t, err)

	episode, err := session.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.EpisodeID("sess-1"), episode.ID)
	assert.Equal(t, 1, episode.Steps)
	assert.Equal(t, []string{"p1"}, episode.Lists[domain.Slot1])
	require.NotNil(t, episode.Size)
	assert.Equal(t, int64(4096), *episode.Size)
	assert.Nil(t, episode.Runtime)
	assert.Nil(t, episode.Baseline)
	assert.Equal(t, fixedNow, episode.RecordedAt)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testBenchmark(targets domain.TargetSlots) domain.Benchmark {
	return domain.Benchmark{
		URI:     "benchmark://gcc_pr-v0/qsort?src_dir=/src&build=make",
		Name:    "gcc_pr-v0/qsort",
		SrcDir:  "/src",
		Build:   "make",
		Binary:  domain.DefaultBinary,
		Run:     []string{"qsort.dat"},
		BaseOpt: []string{domain.DefaultBaseLevel},
		Targets: targets,
	}
}

func newTestSession(t *testing.T, targets domain.TargetSlots, mutate ...func(*domain.Benchmark)) (*Session, *memStore, *fakeOracle, *countingToolchain) {
	t.Helper()

	benchmark := testBenchmark(targets)
	for _, fn := range mutate {
		fn(&benchmark)
	}

	store := newMemStore()
	oracle := newFakeOracle()
	toolchain := &countingToolchain{}

	session, err := NewSession(context.Background(), "sess-1", benchmark, t.TempDir(), SessionDeps{
		Store:     store,
		Oracle:    oracle,
		Toolchain: toolchain,
		Clock:     fixedClock{now: fixedNow},
	})
	require.NoError(t, err)

	return session, store, oracle, toolchain
}

type memStore struct {
	mu    sync.Mutex
	lists map[domain.Slot][]string
}

var _ ports.PassListStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{lists: map[domain.Slot][]string{}}
}

func (s *memStore) Append(_ context.Context, slot domain.Slot, pass domain.Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pass.Front {
		s.lists[slot] = append([]string{pass.Name}, s.lists[slot]...)
		return nil
	}
	s.lists[slot] = append(s.lists[slot], pass.Name)
	return nil
}

func (s *memStore) Read(_ context.Context, slot domain.Slot) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.lists[slot]...), nil
}

func (s *memStore) Reset(_ context.Context, seeds map[domain.Slot][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = map[domain.Slot][]string{}
	for _, slot := range domain.AllSlots {
		s.lists[slot] = append([]string{}, seeds[slot]...)
	}
	return nil
}

func (s *memStore) Path(slot domain.Slot) string {
	return "/mem/list" + slot.String()
}

func (s *memStore) snapshot() map[domain.Slot][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Slot][]string, len(s.lists))
	for slot, passes := range s.lists {
		out[slot] = slices.Clone(passes)
	}
	return out
}

// fakeOracle knows p0..p3, px and bad in slot 1 (p1 also in slot 2), fre and
// dce in slot 2, ccp and expand in slot 3. Everything is legal by default and
// slot 1 closes once p1, p2 and p3 are all present.
type fakeOracle struct {
	mu         sync.Mutex
	slots      map[string][]domain.Slot
	defaults   map[domain.Slot][]string
	legal      func(sequence []string, slot domain.Slot) bool
	lastHint   domain.Slot
	legalSlots []domain.Slot
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		slots: map[string][]domain.Slot{
			"p0":     {domain.Slot1},
			"p1":     {domain.Slot1, domain.Slot2},
			"p2":     {domain.Slot1},
			"p3":     {domain.Slot1},
			"px":     {domain.Slot1},
			"bad":    {domain.Slot1},
			"fre":    {domain.Slot2},
			"dce":    {domain.Slot2},
			"ccp":    {domain.Slot3},
			"expand": {domain.Slot3},
		},
		defaults: map[domain.Slot][]string{
			domain.Slot1: {"p1", "p2"},
			domain.Slot2: {"fre", "dce"},
			domain.Slot3: {"ccp", "expand"},
		},
		legal: func([]string, domain.Slot) bool { return true },
	}
}

func (o *fakeOracle) PassSlot(_ context.Context, name string, hint domain.Slot) (domain.Slot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastHint = hint
	slots := o.slots[name]
	if len(slots) == 0 {
		return domain.SlotNone, domain.ErrUnknownPass
	}
	if hint == domain.SlotNone {
		return slots[0], nil
	}
	if slices.Contains(slots, hint) {
		return hint, nil
	}
	return domain.SlotNone, domain.ErrUnknownPass
}

func (o *fakeOracle) SequenceIsLegal(_ context.Context, sequence []string, slot domain.Slot) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.legalSlots = append(o.legalSlots, slot)
	return o.legal(sequence, slot), nil
}

func (o *fakeOracle) CandidateNextActions(_ context.Context, sequence []string, slot domain.Slot) ([]string, error) {
	if slot != domain.Slot1 {
		return []string{"fre"}, nil
	}

	candidates := []string{}
	for _, name := range []string{"p1", "p2", "p3"} {
		if !slices.Contains(sequence, name) {
			candidates = append(candidates, name)
		}
	}
	return candidates, nil
}

func (o *fakeOracle) DefaultSequence(_ context.Context, slot domain.Slot) ([]string, error) {
	return slices.Clone(o.defaults[slot]), nil
}

type countingToolchain struct {
	builds          int
	baselineBuilds  int
	sizes           int
	baselineSizes   int
	runs            int
	buildErr        error
	baselineErr     error
	lastRunArgs     []string
	lastPassLists   map[domain.Slot]string
	lastBaselineOpt []string
}

func (c *countingToolchain) Build(_ context.Context, req ports.BuildRequest) (ports.Artifact, error) {
	if req.Kind == ports.BuildBaseline {
		c.baselineBuilds++
		c.lastBaselineOpt = req.Benchmark.BaseOpt
		if c.baselineErr != nil {
			return ports.Artifact{}, c.baselineErr
		}
		return ports.Artifact{Path: req.Dir + "/a.out", Dir: req.Dir}, nil
	}

	c.builds++
	c.lastPassLists = req.PassLists
	if c.buildErr != nil {
		return ports.Artifact{}, c.buildErr
	}
	return ports.Artifact{Path: req.Dir + "/a.out", Dir: req.Dir}, nil
}

func (c *countingToolchain) Size(_ context.Context, artifact ports.Artifact) (int64, error) {
	c.sizes++
	if isBaseline(artifact) {
		c.baselineSizes++
		return 5000, nil
	}
	return 4096, nil
}

func (c *countingToolchain) Run(_ context.Context, artifact ports.Artifact, args []string) (time.Duration, error) {
	if isBaseline(artifact) {
		return 2 * time.Second, nil
	}
	c.runs++
	c.lastRunArgs = args
	return 1500 * time.Millisecond, nil
}

func isBaseline(artifact ports.Artifact) bool {
	return len(artifact.Dir) >= len(baselineDirName) && artifact.Dir[len(artifact.Dir)-len(baselineDirName):] == baselineDirName
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Since(t time.Time) time.Duration {
	return c.now.Sub(t)
}
