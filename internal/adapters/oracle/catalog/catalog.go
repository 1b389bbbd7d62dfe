// Package catalog implements the legality oracle from a TOML pass catalog.
//
// Each slot lists the passes it accepts. A pass may require other passes to
// appear earlier in the list and may occur at most Max times; a slot may name
// passes that every legal list must contain.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

type Rule struct {
	Name     string
	Requires []string
	Max      int
}

type slotRules struct {
	rules    []Rule
	byName   map[string]Rule
	defaults []string
	required []string
}

// Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	slots map[domain.Slot]slotRules
}

var _ ports.LegalityOracle = (*Catalog)(nil)

var (
	sharedMu sync.Mutex
	shared   = map[string]func() (*Catalog, error){}
)

// Shared loads the catalog at path once per process and hands the same
// instance to every caller.
func Shared(path string) (*Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve pass catalog path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	sharedMu.Lock()
	load, ok := shared[absPath]
	if !ok {
		load = sync.OnceValues(func() (*Catalog, error) {
			return Load(absPath)
		})
		shared[absPath] = load
	}
	sharedMu.Unlock()

	return load()
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pass catalog: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode pass catalog: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	file.applyDefaults()

	return fromSchema(file)
}

func fromSchema(file fileSchema) (*Catalog, error) {
	c := &Catalog{slots: make(map[domain.Slot]slotRules, len(file.Slots))}

	for _, entry := range file.Slots {
		slot := domain.Slot(entry.ID)
		if entry.ID < int(domain.Slot1) || entry.ID > int(domain.Slot3) {
			return nil, fmt.Errorf("pass catalog: %w %d", domain.ErrInvalidSlot, entry.ID)
		}
		if _, dup := c.slots[slot]; dup {
			return nil, fmt.Errorf("pass catalog: slot %d declared twice", entry.ID)
		}

		rules := slotRules{
			rules:    make([]Rule, 0, len(entry.Passes)),
			byName:   make(map[string]Rule, len(entry.Passes)),
			defaults: append([]string{}, entry.Default...),
			required: append([]string{}, entry.Required...),
		}
		for _, p := range entry.Passes {
			if p.Name == "" {
				return nil, fmt.Errorf("pass catalog: slot %d has a pass without name", entry.ID)
			}
			if p.Name == domain.NoOpPassName {
				return nil, fmt.Errorf("pass catalog: %q is reserved", domain.NoOpPassName)
			}
			if _, dup := rules.byName[p.Name]; dup {
				return nil, fmt.Errorf("pass catalog: slot %d declares %q twice", entry.ID, p.Name)
			}
			if p.Max < 0 {
				return nil, fmt.Errorf("pass catalog: %q has negative max", p.Name)
			}
			rule := Rule{Name: p.Name, Requires: append([]string{}, p.Requires...), Max: p.Max}
			rules.rules = append(rules.rules, rule)
			rules.byName[p.Name] = rule
		}

		var errs []error
		for _, p := range rules.rules {
			for _, dep := range p.Requires {
				if _, ok := rules.byName[dep]; !ok {
					errs = append(errs, fmt.Errorf("pass catalog: %q requires unknown pass %q in slot %d", p.Name, dep, entry.ID))
				}
			}
		}
		for _, name := range rules.required {
			if _, ok := rules.byName[name]; !ok {
				errs = append(errs, fmt.Errorf("pass catalog: slot %d requires unknown pass %q", entry.ID, name))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}

		c.slots[slot] = rules
	}

	return c, nil
}

func (c *Catalog) PassSlot(ctx context.Context, name string, hint domain.Slot) (domain.Slot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SlotNone, err
	}

	if hint != domain.SlotNone {
		if _, ok := c.slots[hint].byName[name]; ok {
			return hint, nil
		}
		return domain.SlotNone, fmt.Errorf("%w %q in slot %d", domain.ErrUnknownPass, name, hint)
	}

	for _, slot := range domain.AllSlots {
		if _, ok := c.slots[slot].byName[name]; ok {
			return slot, nil
		}
	}

	return domain.SlotNone, fmt.Errorf("%w %q", domain.ErrUnknownPass, name)
}

func (c *Catalog) SequenceIsLegal(ctx context.Context, sequence []string, slot domain.Slot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	rules, ok := c.slots[slot]
	if !ok {
		return len(sequence) == 0, nil
	}

	counts := make(map[string]int, len(sequence))
	for _, name := range sequence {
		rule, ok := rules.byName[name]
		if !ok {
			return false, nil
		}
		for _, dep := range rule.Requires {
			if counts[dep] == 0 {
				return false, nil
			}
		}
		counts[name]++
		if counts[name] > rule.Max {
			return false, nil
		}
	}

	for _, name := range rules.required {
		if counts[name] == 0 {
			return false, nil
		}
	}

	return true, nil
}

func (c *Catalog) CandidateNextActions(ctx context.Context, sequence []string, slot domain.Slot) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rules := c.slots[slot]
	counts := make(map[string]int, len(sequence))
	for _, name := range sequence {
		counts[name]++
	}

	candidates := make([]string, 0, len(rules.rules))
	for _, rule := range rules.rules {
		if counts[rule.Name] >= rule.Max {
			continue
		}
		if !satisfied(rule.Requires, counts) {
			continue
		}
		candidates = append(candidates, rule.Name)
	}

	return candidates, nil
}

func (c *Catalog) DefaultSequence(ctx context.Context, slot domain.Slot) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return append([]string{}, c.slots[slot].defaults...), nil
}

// Rules lists the passes of slot in catalog order.
func (c *Catalog) Rules(slot domain.Slot) []Rule {
	return append([]Rule(nil), c.slots[slot].rules...)
}

func satisfied(requires []string, counts map[string]int) bool {
	for _, dep := range requires {
		if counts[dep] == 0 {
			return false
		}
	}
	return true
}
