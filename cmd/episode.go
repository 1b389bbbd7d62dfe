package cmd

import (
	"context"
	"fmt"

	sessionrender "github.com/bnema/gccpr/internal/adapters/render/session"
	"github.com/bnema/gccpr/internal/application"
	"github.com/bnema/gccpr/internal/domain"
	"github.com/spf13/cobra"
)

type episodeOutput struct {
	Episode      episodeJSON    `json:"episode"`
	Steps        []stepJSON     `json:"steps"`
	Observations map[string]any `json:"observations"`
	Stopped      bool           `json:"stopped"`
}

type stepJSON struct {
	Action       string   `json:"action"`
	EndOfEpisode bool     `json:"end_of_episode"`
	Truncated    bool     `json:"truncated"`
	ActionSpace  []string `json:"action_space,omitempty"`
}

func newEpisodeCmd(loader *appLoader) *cobra.Command {
	var (
		benchmark    string
		actions      []string
		observations []string
		record       bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "episode",
		Short: "Run one session: apply actions, then observe",
		Long:  "episode starts a session for a benchmark URI, applies every --action in order and prints the requested --observe values. Measuring size or runtime builds the benchmark.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			runCmd := application.RunEpisodeCommand{
				BenchmarkURI: benchmark,
				Actions:      actions,
				Observations: observations,
				Record:       record,
			}

			var report application.EpisodeReport
			run := func(ctx context.Context) error {
				var runErr error
				report, runErr = app.service.RunEpisode(ctx, runCmd)
				return runErr
			}

			if asJSON {
				if err := run(cmd.Context()); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), toEpisodeOutput(report))
			}

			if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Running episode...", run); err != nil {
				return err
			}

			return writeEpisodeReport(cmd, app, report)
		},
	}

	cmd.Flags().StringVar(&benchmark, "benchmark", "", "Benchmark URI (benchmark://gcc_pr-v0/<name>?src_dir=...&build=...)")
	cmd.Flags().StringArrayVar(&actions, "action", nil, "Action token [>]<pass>[?<slot>] (repeatable)")
	cmd.Flags().StringArrayVar(&observations, "observe", []string{domain.ObservationPasses.String()}, "Observation space to report (repeatable)")
	cmd.Flags().BoolVar(&record, "record", false, "Save the episode to the history file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("benchmark")

	return cmd
}

func toEpisodeOutput(report application.EpisodeReport) episodeOutput {
	steps := make([]stepJSON, 0, len(report.Steps))
	for _, step := range report.Steps {
		steps = append(steps, stepJSON{
			Action:       step.Action,
			EndOfEpisode: step.Result.EndOfEpisode,
			Truncated:    step.Result.Truncated,
			ActionSpace:  step.Result.ActionSpace,
		})
	}

	return episodeOutput{
		Episode:      toEpisodeJSON(report.Episode),
		Steps:        steps,
		Observations: observationMap(report.Observations),
		Stopped:      report.Stopped,
	}
}

func writeEpisodeReport(cmd *cobra.Command, app *app, report application.EpisodeReport) error {
	rendered, err := app.renderer([]domain.Episode{report.Episode}, sessionrender.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render episode: %w", err)
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, rendered); err != nil {
		return err
	}
	if report.Stopped {
		if _, err := fmt.Fprintf(out, "episode ended after %d of the given actions\n", len(report.Steps)); err != nil {
			return err
		}
	}
	for _, observation := range report.Observations {
		if _, err := fmt.Fprintf(out, "%s: %s\n", observation.Kind, formatObservation(observation)); err != nil {
			return err
		}
	}

	return nil
}
