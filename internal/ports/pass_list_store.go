package ports

import (
	"context"

	"github.com/bnema/gccpr/internal/domain"
)

// PassListStore keeps the per-slot pass lists read by the compiler plugin.
type PassListStore interface {
	Append(ctx context.Context, slot domain.Slot, pass domain.Pass) error
	Read(ctx context.Context, slot domain.Slot) ([]string, error)
	Reset(ctx context.Context, seeds map[domain.Slot][]string) error
	Path(slot domain.Slot) string
}
