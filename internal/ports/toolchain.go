package ports

import (
	"context"
	"time"

	"github.com/bnema/gccpr/internal/domain"
)

type BuildKind string

const (
	BuildPassList BuildKind = "pass_list"
	BuildBaseline BuildKind = "baseline"
)

type BuildRequest struct {
	Kind      BuildKind
	Benchmark domain.Benchmark
	// Dir is the directory the build runs in; it is private to the session.
	Dir string
	// PassLists maps each slot to the list file handed to the plugin. Empty
	// for baseline builds.
	PassLists map[domain.Slot]string
}

// Artifact is a runnable program produced by a build.
type Artifact struct {
	Path string
	Dir  string
}

// Toolchain wraps the external compiler, size tool and emulator.
type Toolchain interface {
	Build(ctx context.Context, req BuildRequest) (Artifact, error)
	Size(ctx context.Context, artifact Artifact) (int64, error)
	Run(ctx context.Context, artifact Artifact, args []string) (time.Duration, error)
}
