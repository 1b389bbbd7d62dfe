package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bnema/gccpr/internal/application"
	"github.com/bnema/gccpr/internal/domain"
	"github.com/spf13/cobra"
)

const (
	opStart   = "start"
	opApply   = "apply"
	opObserve = "observe"
	opEnd     = "end"
	opSpaces  = "spaces"

	codeInvalidArgument = "invalid_argument"
	codeNotFound        = "not_found"
	codeInternal        = "internal"

	maxRequestBytes       = 1 << 20
	metricsShutdownPeriod = 5 * time.Second
)

var errUnknownOp = fmt.Errorf("%w: unknown op", domain.ErrInvalidArgument)

type serveRequest struct {
	Op          string `json:"op"`
	Benchmark   string `json:"benchmark,omitempty"`
	Session     string `json:"session,omitempty"`
	Action      string `json:"action,omitempty"`
	Observation string `json:"observation,omitempty"`
	Record      bool   `json:"record,omitempty"`
}

type serveResponse struct {
	OK           bool                  `json:"ok"`
	Error        string                `json:"error,omitempty"`
	Code         string                `json:"code,omitempty"`
	Session      string                `json:"session,omitempty"`
	ActionSpace  any                   `json:"action_space,omitempty"`
	EndOfEpisode *bool                 `json:"end_of_episode,omitempty"`
	Truncated    *bool                 `json:"truncated,omitempty"`
	Observation  string                `json:"observation,omitempty"`
	Value        any                   `json:"value,omitempty"`
	Episode      *episodeJSON          `json:"episode,omitempty"`
	Observations []observationSpecJSON `json:"observations,omitempty"`
}

type observationSpecJSON struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	Deterministic     bool   `json:"deterministic"`
	PlatformDependent bool   `json:"platform_dependent"`
	Default           any    `json:"default"`
}

func newServeCmd(loader *appLoader) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer session requests, one JSON object per line on stdin",
		Long:  `serve reads requests such as {"op":"start","benchmark":"benchmark://..."} from stdin and writes one JSON response per line to stdout. Sessions still open at end of input are closed without being recorded.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				stop, err := serveMetrics(app, metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}

			handler := &protocolHandler{service: app.service, logger: app.logger}
			return handler.serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. 127.0.0.1:9464)")

	return cmd
}

func serveMetrics(app *app, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.recorder.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server stopped", "error", err)
		}
	}()
	app.logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

type protocolHandler struct {
	service *application.Service
	logger  *slog.Logger
}

func (h *protocolHandler) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	enc := json.NewEncoder(out)

	var serveErr error
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			serveErr = err
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if err := enc.Encode(h.handle(ctx, line)); err != nil {
			serveErr = fmt.Errorf("write response: %w", err)
			break
		}
	}
	if serveErr == nil {
		if err := scanner.Err(); err != nil {
			serveErr = fmt.Errorf("read request: %w", err)
		}
	}

	return errors.Join(serveErr, h.closeOpenSessions(context.WithoutCancel(ctx)))
}

func (h *protocolHandler) handle(ctx context.Context, line []byte) serveResponse {
	var req serveRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(fmt.Errorf("%w: decode request: %v", domain.ErrInvalidArgument, err))
	}

	switch req.Op {
	case opStart:
		info, err := h.service.Start(ctx, application.StartSessionCommand{BenchmarkURI: req.Benchmark})
		if err != nil {
			return errorResponse(err)
		}
		return serveResponse{OK: true, Session: info.ID, ActionSpace: slotMap(info.ActionSpace)}

	case opApply:
		result, err := h.service.Apply(ctx, application.ApplyActionCommand{SessionID: req.Session, Action: req.Action})
		if err != nil {
			return errorResponse(err)
		}
		resp := serveResponse{
			OK:           true,
			Session:      req.Session,
			EndOfEpisode: &result.EndOfEpisode,
			Truncated:    &result.Truncated,
		}
		// A no-op step carries no action_space at all; an exhausted slot
		// carries an empty one.
		switch {
		case result.ActionSpace != nil:
			resp.ActionSpace = result.ActionSpace
		case result.EndOfEpisode:
			resp.ActionSpace = []string{}
		}
		return resp

	case opObserve:
		observation, err := h.service.Observe(ctx, application.ObserveCommand{SessionID: req.Session, Observation: req.Observation})
		if err != nil {
			return errorResponse(err)
		}
		return serveResponse{OK: true, Session: req.Session, Observation: observation.Kind.String(), Value: observation.Value()}

	case opEnd:
		episode, err := h.service.End(ctx, application.EndSessionCommand{SessionID: req.Session, Record: req.Record})
		if err != nil {
			return errorResponse(err)
		}
		out := toEpisodeJSON(episode)
		return serveResponse{OK: true, Session: req.Session, Episode: &out}

	case opSpaces:
		view, err := h.service.Spaces(ctx)
		if err != nil {
			return errorResponse(err)
		}
		specs := make([]observationSpecJSON, 0, len(view.Observations))
		for _, spec := range view.Observations {
			specs = append(specs, observationSpecJSON{
				Name:              spec.Kind.String(),
				Type:              string(spec.Type),
				Deterministic:     spec.Deterministic,
				PlatformDependent: spec.PlatformDependent,
				Default:           spec.Default.Value(),
			})
		}
		return serveResponse{OK: true, ActionSpace: slotMap(view.ActionSpace), Observations: specs}

	default:
		return errorResponse(fmt.Errorf("%w %q", errUnknownOp, req.Op))
	}
}

func (h *protocolHandler) closeOpenSessions(ctx context.Context) error {
	var errs []error
	for _, id := range h.service.Sessions() {
		if _, err := h.service.End(ctx, application.EndSessionCommand{SessionID: id}); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
			continue
		}
		h.logger.Debug("closed session at end of input", "session", id)
	}
	return errors.Join(errs...)
}

func errorResponse(err error) serveResponse {
	return serveResponse{OK: false, Error: err.Error(), Code: errorCode(err)}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return codeInvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return codeNotFound
	default:
		return codeInternal
	}
}
