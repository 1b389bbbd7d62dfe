package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	promrecorder "github.com/bnema/gccpr/internal/adapters/metrics/prometheus"
	cachedoracle "github.com/bnema/gccpr/internal/adapters/oracle/cached"
	"github.com/bnema/gccpr/internal/adapters/oracle/catalog"
	chainoracle "github.com/bnema/gccpr/internal/adapters/oracle/chain"
	execoracle "github.com/bnema/gccpr/internal/adapters/oracle/exec"
	filestore "github.com/bnema/gccpr/internal/adapters/passlist/file"
	sessionrender "github.com/bnema/gccpr/internal/adapters/render/session"
	tomlrepo "github.com/bnema/gccpr/internal/adapters/repo/toml"
	"github.com/bnema/gccpr/internal/adapters/toolchain/gcc"
	"github.com/bnema/gccpr/internal/application"
	"github.com/bnema/gccpr/internal/config"
	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/logging"
	"github.com/bnema/gccpr/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	service  *application.Service
	catalog  *catalog.Catalog
	recorder *promrecorder.Recorder
	renderer func([]domain.Episode, sessionrender.RenderOptions) (string, error)
	now      func() time.Time
}

func wireApp(opts rootOptions, logOutput io.Writer) (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v, config.LoadOptions{ConfigFile: opts.configFile})
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: logOutput})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	passCatalog, err := catalog.Shared(cfg.Catalog.Path)
	switch {
	case err == nil:
	case cfg.Oracle.Command != "" && errors.Is(err, fs.ErrNotExist):
		// The shuffler answers alone when no catalog file exists.
		passCatalog = nil
		logger.Warn("pass catalog not found, shuffler has no fallback", "catalog", cfg.Catalog.Path)
	default:
		return nil, fmt.Errorf("wire pass catalog: %w", err)
	}

	oracle, err := wireOracle(cfg, passCatalog)
	if err != nil {
		return nil, err
	}
	if cfg.Oracle.CacheSize > 0 {
		oracle, err = cachedoracle.NewOracle(oracle, cfg.Oracle.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("wire oracle cache: %w", err)
		}
	}

	history, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire episode history: %w", err)
	}

	clock := ports.SystemClock{}
	recorder := promrecorder.NewRecorder()
	toolchain := gcc.NewToolchain(gcc.Config{
		CC:       cfg.Toolchain.CC,
		Plugin:   cfg.Toolchain.Plugin,
		SizeTool: cfg.Toolchain.Size,
		Emulator: cfg.Toolchain.Emulator,
	}, clock)

	service := application.NewService(application.ServiceDeps{
		Oracle:    oracle,
		Toolchain: toolchain,
		Episodes:  history,
		NewStore: func(dir string) ports.PassListStore {
			return filestore.NewStore(dir)
		},
		Recorder:     recorder,
		Clock:        clock,
		Logger:       logger,
		WorkRoot:     cfg.Work.Root,
		KeepWorkDirs: cfg.Work.Keep,
	})

	logger.Debug("application wired",
		"catalog", cfg.Catalog.Path,
		"history", history.Path(),
		"work_root", cfg.Work.Root,
		"shuffler", cfg.Oracle.Command != "",
		"catalog_loaded", passCatalog != nil,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		catalog:  passCatalog,
		recorder: recorder,
		renderer: sessionrender.Render,
		now:      time.Now,
	}, nil
}

// wireOracle picks the catalog, the shuffler, or the shuffler with the catalog
// as fallback. passCatalog is nil only when a shuffler is configured.
func wireOracle(cfg config.Config, passCatalog *catalog.Catalog) (ports.LegalityOracle, error) {
	switch {
	case cfg.Oracle.Command == "":
		return passCatalog, nil
	case passCatalog == nil:
		return execoracle.NewOracle(cfg.Oracle.Command), nil
	}

	oracle, err := chainoracle.NewShufflerFirstWithCatalogFallback(cfg.Oracle.Command, cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("wire oracle chain: %w", err)
	}
	return oracle, nil
}
