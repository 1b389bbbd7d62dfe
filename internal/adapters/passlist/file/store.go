package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const (
	storeDirMode   = 0o755
	listFileMode   = 0o644
	listFilePrefix = "list"
	tempFilePrefix = ".list-*.tmp"
)

// Store keeps one newline-delimited file per slot (list1, list2, list3) in a
// session directory. The plugin reads these files as-is.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.PassListStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Path(slot domain.Slot) string {
	return filepath.Join(s.root, listFilePrefix+slot.String())
}

func (s *Store) Append(ctx context.Context, slot domain.Slot, pass domain.Pass) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateEntry(slot, pass.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pass.Front {
		return s.prepend(slot, pass.Name)
	}

	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create pass list directory: %w", err)
	}

	f, err := os.OpenFile(s.Path(slot), os.O_APPEND|os.O_CREATE|os.O_WRONLY, listFileMode)
	if err != nil {
		return fmt.Errorf("open pass list %d: %w", slot, err)
	}
	if _, err := f.WriteString(pass.Name + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append pass list %d: %w", slot, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pass list %d: %w", slot, err)
	}

	return nil
}

func (s *Store) Read(ctx context.Context, slot domain.Slot) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !slot.Valid() {
		return nil, fmt.Errorf("%w %d", domain.ErrInvalidSlot, slot)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readLocked(slot)
}

func (s *Store) Reset(ctx context.Context, seeds map[domain.Slot][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range domain.AllSlots {
		seed := seeds[slot]
		for _, name := range seed {
			if err := validateEntry(slot, name); err != nil {
				return err
			}
		}
		if err := s.writeLocked(slot, seed); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) prepend(slot domain.Slot, name string) error {
	current, err := s.readLocked(slot)
	if err != nil {
		return err
	}

	return s.writeLocked(slot, append([]string{name}, current...))
}

func (s *Store) readLocked(slot domain.Slot) ([]string, error) {
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read pass list %d: %w", slot, err)
	}

	passes := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		passes = append(passes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan pass list %d: %w", slot, err)
	}

	return passes, nil
}

func (s *Store) writeLocked(slot domain.Slot, passes []string) error {
	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create pass list directory: %w", err)
	}

	var buf bytes.Buffer
	for _, name := range passes {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	tempFile, err := os.CreateTemp(s.root, tempFilePrefix)
	if err != nil {
		return fmt.Errorf("create temp pass list %d: %w", slot, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(buf.Bytes()); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp pass list %d: %w", slot, err)
	}
	if err := tempFile.Chmod(listFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp pass list %d: %w", slot, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp pass list %d: %w", slot, err)
	}
	if err := os.Rename(tempName, s.Path(slot)); err != nil {
		return fmt.Errorf("replace pass list %d: %w", slot, err)
	}

	cleanup = false
	return nil
}

func validateEntry(slot domain.Slot, name string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w %d", domain.ErrInvalidSlot, slot)
	}
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: pass name %q", domain.ErrInvalidArgument, name)
	}
	return nil
}
