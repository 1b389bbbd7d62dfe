package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	HistoryPathKey = "history.path"

	historyFileMode   = 0o600
	historyDirMode    = 0o700
	historyConfigDir  = ".gccpr"
	historyConfigFile = "history.toml"
	tempFilePattern   = ".history-*.toml.tmp"
)

// Repository is the episode ledger: one TOML file holding every finished
// session, rewritten atomically on save.
type Repository struct {
	historyPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.EpisodeRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(HistoryPathKey, filepath.Join(homeDir, historyConfigDir, historyConfigFile))

	historyPath := cfg.GetString(HistoryPathKey)
	if historyPath == "" {
		return nil, errors.New("history path is empty")
	}
	historyPath, err = normalizeHistoryPath(historyPath)
	if err != nil {
		return nil, err
	}

	return &Repository{historyPath: historyPath, mu: lockForPath(historyPath)}, nil
}

func (r *Repository) Path() string {
	return r.historyPath
}

func (r *Repository) Save(ctx context.Context, episode domain.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := episode.Validate(); err != nil {
		return fmt.Errorf("save episode: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(episode)
	updated := false
	for i := range file.Episodes {
		if file.Episodes[i].ID == encoded.ID {
			file.Episodes[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Episodes = append(file.Episodes, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByID(ctx context.Context, id domain.EpisodeID) (domain.Episode, error) {
	if err := ctx.Err(); err != nil {
		return domain.Episode{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Episode{}, err
	}

	for _, entry := range file.Episodes {
		if entry.ID == string(id) {
			return fromSchema(entry)
		}
	}

	return domain.Episode{}, fmt.Errorf("%w %q", domain.ErrEpisodeNotFound, id)
}

// List returns episodes oldest first.
func (r *Repository) List(ctx context.Context) ([]domain.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	episodes := make([]domain.Episode, 0, len(file.Episodes))
	for _, entry := range file.Episodes {
		episode, err := fromSchema(entry)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].RecordedAt.Before(episodes[j].RecordedAt)
	})

	return episodes, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.historyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read history file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode history file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeHistoryPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.historyPath), historyDirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.historyPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}

	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tempName, r.historyPath); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(episode domain.Episode) episodeSchema {
	lists := make(map[string][]string, len(episode.Lists))
	for slot, passes := range episode.Lists {
		lists[slot.String()] = append([]string{}, passes...)
	}

	entry := episodeSchema{
		ID:         string(episode.ID),
		Benchmark:  episode.Benchmark,
		Targets:    episode.Targets.String(),
		Steps:      episode.Steps,
		Lists:      lists,
		Size:       episode.Size,
		Runtime:    episode.Runtime,
		RecordedAt: formatTime(episode.RecordedAt),
	}
	if episode.Baseline != nil {
		entry.Baseline = &baselineSchema{Size: episode.Baseline.Size, Runtime: episode.Baseline.Runtime}
	}

	return entry
}

func fromSchema(entry episodeSchema) (domain.Episode, error) {
	targets, err := domain.ParseTargetSlots([]string{entry.Targets})
	if err != nil {
		return domain.Episode{}, fmt.Errorf("decode episode %s: %w", entry.ID, err)
	}

	lists := make(map[domain.Slot][]string, len(entry.Lists))
	for raw, passes := range entry.Lists {
		slot, err := domain.ParseSlot(raw)
		if err != nil {
			return domain.Episode{}, fmt.Errorf("decode episode %s: %w", entry.ID, err)
		}
		lists[slot] = append([]string{}, passes...)
	}

	episode := domain.Episode{
		ID:         domain.EpisodeID(entry.ID),
		Benchmark:  entry.Benchmark,
		Targets:    targets,
		Lists:      lists,
		Steps:      entry.Steps,
		Size:       entry.Size,
		Runtime:    entry.Runtime,
		RecordedAt: parseTime(entry.RecordedAt),
	}
	if entry.Baseline != nil {
		episode.Baseline = &domain.Measurement{Size: entry.Baseline.Size, Runtime: entry.Baseline.Runtime}
	}

	return episode, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
