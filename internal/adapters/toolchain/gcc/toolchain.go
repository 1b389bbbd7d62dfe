// Package gcc builds benchmarks with GCC and the pass-reordering plugin, then
// measures the result with a size tool and an emulator.
package gcc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const (
	DefaultCC = "gcc"

	sourcesMarker = ".gccpr-sources"
	markerMode    = 0o644
)

var (
	ErrMissingPlugin   = errors.New("compiler plugin is not configured")
	ErrMissingBuildDir = errors.New("build directory is required")
)

type Config struct {
	CC     string
	Plugin string
	// SizeTool is a Berkeley-format size program. Empty means file size.
	SizeTool string
	// Emulator prefixes the run command, e.g. "qemu-riscv64 -L /sysroot".
	Emulator string
}

type runFunc func(ctx context.Context, dir string, env []string, name string, args ...string) (stdout string, stderr string, err error)

type Toolchain struct {
	cfg   Config
	clock ports.Clock
	run   runFunc
}

var _ ports.Toolchain = (*Toolchain)(nil)

func NewToolchain(cfg Config, clock ports.Clock) *Toolchain {
	if strings.TrimSpace(cfg.CC) == "" {
		cfg.CC = DefaultCC
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Toolchain{cfg: cfg, clock: clock, run: runCommand}
}

func (t *Toolchain) Build(ctx context.Context, req ports.BuildRequest) (ports.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return ports.Artifact{}, err
	}
	if strings.TrimSpace(req.Dir) == "" {
		return ports.Artifact{}, ErrMissingBuildDir
	}
	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return ports.Artifact{}, fmt.Errorf("resolve build directory: %w", err)
	}

	if err := copySources(req.Benchmark.SrcDir, dir); err != nil {
		return ports.Artifact{}, err
	}

	cflags, err := t.cflags(req)
	if err != nil {
		return ports.Artifact{}, err
	}

	artifact := ports.Artifact{Path: filepath.Join(dir, req.Benchmark.Binary), Dir: dir}
	if err := os.Remove(artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return ports.Artifact{}, fmt.Errorf("remove stale artifact: %w", err)
	}

	env := []string{"CC=" + t.cfg.CC, "CFLAGS=" + strings.Join(cflags, " ")}
	_, stderr, err := t.run(ctx, dir, env, "sh", "-c", req.Benchmark.Build)
	if err != nil {
		return ports.Artifact{}, formatError("build "+string(req.Kind), err, stderr)
	}

	if _, err := os.Stat(artifact.Path); err != nil {
		return ports.Artifact{}, fmt.Errorf("build %s: artifact %s: %w", req.Kind, req.Benchmark.Binary, err)
	}

	return artifact, nil
}

func (t *Toolchain) Size(ctx context.Context, artifact ports.Artifact) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if strings.TrimSpace(t.cfg.SizeTool) == "" {
		info, err := os.Stat(artifact.Path)
		if err != nil {
			return 0, fmt.Errorf("stat artifact: %w", err)
		}
		return info.Size(), nil
	}

	fields := strings.Fields(t.cfg.SizeTool)
	stdout, stderr, err := t.run(ctx, artifact.Dir, nil, fields[0], append(fields[1:], artifact.Path)...)
	if err != nil {
		return 0, formatError("size", err, stderr)
	}

	return parseTextSize(stdout)
}

func (t *Toolchain) Run(ctx context.Context, artifact ports.Artifact, args []string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	name := artifact.Path
	argv := append([]string(nil), args...)
	if fields := strings.Fields(t.cfg.Emulator); len(fields) > 0 {
		name = fields[0]
		argv = append(append(fields[1:len(fields):len(fields)], artifact.Path), args...)
	}

	start := t.clock.Now()
	_, stderr, err := t.run(ctx, artifact.Dir, nil, name, argv...)
	if err != nil {
		return 0, formatError("run", err, stderr)
	}

	return t.clock.Since(start), nil
}

func (t *Toolchain) cflags(req ports.BuildRequest) ([]string, error) {
	flags := append([]string(nil), req.Benchmark.BaseOpt...)
	if req.Kind == ports.BuildBaseline {
		return flags, nil
	}

	if strings.TrimSpace(t.cfg.Plugin) == "" {
		return nil, ErrMissingPlugin
	}

	plugin := pluginName(t.cfg.Plugin)
	flags = append(flags, "-fplugin="+t.cfg.Plugin)
	for _, slot := range domain.AllSlots {
		path, ok := req.PassLists[slot]
		if !ok {
			continue
		}
		flags = append(flags, fmt.Sprintf("-fplugin-arg-%s-list%s=%s", plugin, slot, path))
	}

	return flags, nil
}

// pluginName is the name GCC derives from the plugin path for -fplugin-arg.
func pluginName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// copySources populates dir from srcDir once; later builds reuse the copy.
func copySources(srcDir string, dir string) error {
	marker := filepath.Join(dir, sourcesMarker)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	if err := os.CopyFS(dir, os.DirFS(srcDir)); err != nil {
		return fmt.Errorf("copy benchmark sources: %w", err)
	}
	if err := os.WriteFile(marker, []byte(srcDir+"\n"), markerMode); err != nil {
		return fmt.Errorf("mark build directory: %w", err)
	}

	return nil
}

// parseTextSize reads the text column of Berkeley size output:
//
//	   text    data     bss     dec     hex filename
//	   1234     100       8    1342     53e a.out
func parseTextSize(out string) (int64, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("parse size output: %q", out)
	}

	fields := strings.Fields(lines[1])
	if len(fields) == 0 {
		return 0, fmt.Errorf("parse size output: %q", out)
	}

	text, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size output: %w", err)
	}

	return text, nil
}

func runCommand(ctx context.Context, dir string, env []string, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %w: %s", op, err, stderr)
}
