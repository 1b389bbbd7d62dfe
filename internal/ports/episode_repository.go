package ports

import (
	"context"

	"github.com/bnema/gccpr/internal/domain"
)

type EpisodeRepository interface {
	GetByID(ctx context.Context, id domain.EpisodeID) (domain.Episode, error)
	List(ctx context.Context) ([]domain.Episode, error)
	Save(ctx context.Context, episode domain.Episode) error
}
