package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	BenchmarkScheme  = "benchmark"
	DefaultBinary    = "a.out"
	DefaultBaseLevel = "-O2"

	ParamBaseOpt     = "base_opt"
	ParamSrcDir      = "src_dir"
	ParamBuild       = "build"
	ParamRun         = "run"
	ParamBinary      = "bin"
	ParamList        = "list"
	ParamBaseSize    = "base_size"
	ParamBaseRuntime = "base_runtime"
)

var benchmarkValidate = validator.New()

// Benchmark describes how to build, run and measure one benchmark program.
type Benchmark struct {
	URI     string   `validate:"required"`
	Name    string   `validate:"required"`
	SrcDir  string   `validate:"required"`
	Build   string   `validate:"required"`
	Binary  string   `validate:"required"`
	Run     []string `validate:"omitempty,dive,required"`
	BaseOpt []string `validate:"min=1,dive,required"`
	Targets TargetSlots

	// Fixed baseline values; nil means the value is measured.
	BaseSize    *int64   `validate:"omitempty,gte=0"`
	BaseRuntime *float64 `validate:"omitempty,gte=0"`
}

// Measurement is one size/runtime pair taken from a built artifact.
type Measurement struct {
	Size    int64
	Runtime float64
}

// ParseBenchmarkURI decodes benchmark://<dataset>/<name>?<params>.
func ParseBenchmarkURI(raw string) (Benchmark, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Benchmark{}, fmt.Errorf("%w: parse uri: %v", ErrInvalidBenchmark, err)
	}
	if parsed.Scheme != BenchmarkScheme {
		return Benchmark{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBenchmark, parsed.Scheme)
	}

	params := parsed.Query()
	benchmark := Benchmark{
		URI:     raw,
		Name:    strings.Trim(parsed.Host+parsed.Path, "/"),
		SrcDir:  strings.TrimSpace(params.Get(ParamSrcDir)),
		Build:   strings.Join(params[ParamBuild], " "),
		Binary:  firstNonEmpty(params.Get(ParamBinary), DefaultBinary),
		Run:     params[ParamRun],
		BaseOpt: params[ParamBaseOpt],
	}
	if len(benchmark.BaseOpt) == 0 {
		benchmark.BaseOpt = []string{DefaultBaseLevel}
	}

	benchmark.Targets, err = ParseTargetSlots(params[ParamList])
	if err != nil {
		return Benchmark{}, fmt.Errorf("%w: %w", ErrInvalidBenchmark, err)
	}

	if raw := params.Get(ParamBaseSize); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Benchmark{}, fmt.Errorf("%w: %s %q", ErrInvalidBenchmark, ParamBaseSize, raw)
		}
		benchmark.BaseSize = &size
	}
	if raw := params.Get(ParamBaseRuntime); raw != "" {
		runtime, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Benchmark{}, fmt.Errorf("%w: %s %q", ErrInvalidBenchmark, ParamBaseRuntime, raw)
		}
		benchmark.BaseRuntime = &runtime
	}

	if err := benchmark.Validate(); err != nil {
		return Benchmark{}, err
	}

	return benchmark, nil
}

func (b Benchmark) Validate() error {
	if err := benchmarkValidate.Struct(b); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidBenchmark, strings.ToLower(field.Field()), field.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidBenchmark, err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
