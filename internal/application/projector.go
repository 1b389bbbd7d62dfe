package application

import (
	"context"
	"fmt"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

// project returns the passes that may follow slot's stored sequence, or nil
// when the slot admits no further action.
func project(ctx context.Context, store ports.PassListStore, oracle ports.LegalityOracle, slot domain.Slot) ([]string, error) {
	sequence, err := store.Read(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("read pass list %s: %w", slot, err)
	}

	candidates, err := oracle.CandidateNextActions(ctx, sequence, slot)
	if err != nil {
		return nil, fmt.Errorf("project action space for slot %s: %w", slot, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	return candidates, nil
}
