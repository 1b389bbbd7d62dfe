package cmd

import (
	"fmt"

	sessionrender "github.com/bnema/gccpr/internal/adapters/render/session"
	"github.com/bnema/gccpr/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(loader *appLoader) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history [episode-id]",
		Short: "Show recorded episodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			var episodes []domain.Episode
			if len(args) == 1 {
				episode, err := app.service.Episode(cmd.Context(), domain.EpisodeID(args[0]))
				if err != nil {
					return err
				}
				episodes = []domain.Episode{episode}
			} else {
				episodes, err = app.service.History(cmd.Context())
				if err != nil {
					return err
				}
			}

			if asJSON {
				out := make([]episodeJSON, 0, len(episodes))
				for _, episode := range episodes {
					out = append(out, toEpisodeJSON(episode))
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			rendered, err := app.renderer(episodes, sessionrender.RenderOptions{Now: app.now(), Limit: limit})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the N most recent episodes (0 shows all)")

	return cmd
}
