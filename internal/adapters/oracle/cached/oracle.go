// Package cached memoizes legality answers shared by concurrent sessions.
package cached

import (
	"context"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const DefaultSize = 4096

type answer struct {
	slot  domain.Slot
	legal bool
	list  []string
}

// Oracle answers from an LRU cache and collapses identical in-flight lookups.
// Errors are never cached.
type Oracle struct {
	next  ports.LegalityOracle
	cache *lru.Cache[string, answer]
	group singleflight.Group
}

var _ ports.LegalityOracle = (*Oracle)(nil)

func NewOracle(next ports.LegalityOracle, size int) (*Oracle, error) {
	if size <= 0 {
		size = DefaultSize
	}

	cache, err := lru.New[string, answer](size)
	if err != nil {
		return nil, fmt.Errorf("create oracle cache: %w", err)
	}

	return &Oracle{next: next, cache: cache}, nil
}

func (o *Oracle) PassSlot(ctx context.Context, name string, hint domain.Slot) (domain.Slot, error) {
	got, err := o.lookup(ctx, cacheKey("slot", hint, name), func(ctx context.Context) (answer, error) {
		slot, err := o.next.PassSlot(ctx, name, hint)
		return answer{slot: slot}, err
	})
	if err != nil {
		return domain.SlotNone, err
	}

	return got.slot, nil
}

func (o *Oracle) SequenceIsLegal(ctx context.Context, sequence []string, slot domain.Slot) (bool, error) {
	got, err := o.lookup(ctx, cacheKey("legal", slot, sequence...), func(ctx context.Context) (answer, error) {
		legal, err := o.next.SequenceIsLegal(ctx, sequence, slot)
		return answer{legal: legal}, err
	})
	if err != nil {
		return false, err
	}

	return got.legal, nil
}

func (o *Oracle) CandidateNextActions(ctx context.Context, sequence []string, slot domain.Slot) ([]string, error) {
	got, err := o.lookup(ctx, cacheKey("next", slot, sequence...), func(ctx context.Context) (answer, error) {
		candidates, err := o.next.CandidateNextActions(ctx, sequence, slot)
		return answer{list: candidates}, err
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(got.list), nil
}

func (o *Oracle) DefaultSequence(ctx context.Context, slot domain.Slot) ([]string, error) {
	got, err := o.lookup(ctx, cacheKey("default", slot), func(ctx context.Context) (answer, error) {
		sequence, err := o.next.DefaultSequence(ctx, slot)
		return answer{list: sequence}, err
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(got.list), nil
}

// Len reports the number of cached answers.
func (o *Oracle) Len() int {
	return o.cache.Len()
}

// lookup shares one load per key between callers. The load runs detached
// from any single caller's cancellation; each caller stops waiting on its
// own context only.
func (o *Oracle) lookup(ctx context.Context, key string, load func(context.Context) (answer, error)) (answer, error) {
	if err := ctx.Err(); err != nil {
		return answer{}, err
	}
	if cached, ok := o.cache.Get(key); ok {
		return cached, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	results := o.group.DoChan(key, func() (any, error) {
		if cached, ok := o.cache.Get(key); ok {
			return cached, nil
		}

		loaded, err := load(loadCtx)
		if err != nil {
			return answer{}, err
		}
		loaded.list = slices.Clone(loaded.list)
		o.cache.Add(key, loaded)

		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return answer{}, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return answer{}, res.Err
		}
		return res.Val.(answer), nil
	}
}

func cacheKey(op string, slot domain.Slot, parts ...string) string {
	return op + "\x00" + slot.String() + "\x00" + strings.Join(parts, "\x00")
}
