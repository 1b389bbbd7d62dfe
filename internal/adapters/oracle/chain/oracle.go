package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/gccpr/internal/adapters/oracle/catalog"
	execoracle "github.com/bnema/gccpr/internal/adapters/oracle/exec"
	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

type Oracle struct {
	primary  ports.LegalityOracle
	fallback ports.LegalityOracle
}

var _ ports.LegalityOracle = (*Oracle)(nil)

var (
	errNilPrimaryOracle  = errors.New("primary legality oracle is nil")
	errNilFallbackOracle = errors.New("fallback legality oracle is nil")
)

func NewOracle(primary ports.LegalityOracle, fallback ports.LegalityOracle) *Oracle {
	oracle, err := NewOracleChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return oracle
}

func NewOracleChecked(primary ports.LegalityOracle, fallback ports.LegalityOracle) (*Oracle, error) {
	if primary == nil {
		return nil, errNilPrimaryOracle
	}
	if fallback == nil {
		return nil, errNilFallbackOracle
	}

	return &Oracle{primary: primary, fallback: fallback}, nil
}

// NewShufflerFirstWithCatalogFallback asks the shuffler command and falls back
// to the shared catalog at catalogPath.
func NewShufflerFirstWithCatalogFallback(command string, catalogPath string) (*Oracle, error) {
	fallback, err := catalog.Shared(catalogPath)
	if err != nil {
		return nil, err
	}

	return NewOracleChecked(execoracle.NewOracle(command), fallback)
}

func (o *Oracle) PassSlot(ctx context.Context, name string, hint domain.Slot) (domain.Slot, error) {
	slot, err := o.primary.PassSlot(ctx, name, hint)
	if err == nil {
		return slot, nil
	}
	if shouldSkipFallback(err) {
		return domain.SlotNone, err
	}

	fallbackSlot, fallbackErr := o.fallback.PassSlot(ctx, name, hint)
	if fallbackErr == nil {
		return fallbackSlot, nil
	}

	return domain.SlotNone, fmt.Errorf("primary oracle slot failed: %w; fallback oracle slot failed: %w", err, fallbackErr)
}

func (o *Oracle) SequenceIsLegal(ctx context.Context, sequence []string, slot domain.Slot) (bool, error) {
	legal, err := o.primary.SequenceIsLegal(ctx, sequence, slot)
	if err == nil {
		return legal, nil
	}
	if shouldSkipFallback(err) {
		return false, err
	}

	fallbackLegal, fallbackErr := o.fallback.SequenceIsLegal(ctx, sequence, slot)
	if fallbackErr == nil {
		return fallbackLegal, nil
	}

	return false, fmt.Errorf("primary oracle legal failed: %w; fallback oracle legal failed: %w", err, fallbackErr)
}

func (o *Oracle) CandidateNextActions(ctx context.Context, sequence []string, slot domain.Slot) ([]string, error) {
	candidates, err := o.primary.CandidateNextActions(ctx, sequence, slot)
	if err == nil {
		return candidates, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackCandidates, fallbackErr := o.fallback.CandidateNextActions(ctx, sequence, slot)
	if fallbackErr == nil {
		return fallbackCandidates, nil
	}

	return nil, fmt.Errorf("primary oracle next failed: %w; fallback oracle next failed: %w", err, fallbackErr)
}

func (o *Oracle) DefaultSequence(ctx context.Context, slot domain.Slot) ([]string, error) {
	sequence, err := o.primary.DefaultSequence(ctx, slot)
	if err == nil {
		return sequence, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackSequence, fallbackErr := o.fallback.DefaultSequence(ctx, slot)
	if fallbackErr == nil {
		return fallbackSequence, nil
	}

	return nil, fmt.Errorf("primary oracle default failed: %w; fallback oracle default failed: %w", err, fallbackErr)
}

// An unknown pass is an answer, not a backend failure.
func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrUnknownPass)
}
