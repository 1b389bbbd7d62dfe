package ports

import (
	"context"

	"github.com/bnema/gccpr/internal/domain"
)

// LegalityOracle answers which slot a pass belongs to and whether a pass
// sequence is legal for a slot.
type LegalityOracle interface {
	// PassSlot resolves the slot owning name. hint is the slot the caller
	// expects, or domain.SlotNone. Unknown passes yield domain.ErrUnknownPass.
	PassSlot(ctx context.Context, name string, hint domain.Slot) (domain.Slot, error)
	SequenceIsLegal(ctx context.Context, sequence []string, slot domain.Slot) (bool, error)
	// CandidateNextActions returns the passes that may follow sequence. An
	// empty result means the slot is closed.
	CandidateNextActions(ctx context.Context, sequence []string, slot domain.Slot) ([]string, error)
	DefaultSequence(ctx context.Context, slot domain.Slot) ([]string, error)
}
