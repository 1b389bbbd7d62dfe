package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/spf13/cobra"
)

var errCatalogMissing = errors.New("pass catalog not loaded")

type passJSON struct {
	Name     string   `json:"name"`
	Requires []string `json:"requires,omitempty"`
	Max      int      `json:"max"`
}

func newPassesCmd(loader *appLoader) *cobra.Command {
	var slotFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "List the passes the catalog accepts per slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			if app.catalog == nil {
				return fmt.Errorf("%w: no pass catalog at %s", errCatalogMissing, app.cfg.Catalog.Path)
			}

			slots := domain.AllSlots
			if slotFlag != "" {
				slot, err := domain.ParseSlot(slotFlag)
				if err != nil {
					return err
				}
				slots = []domain.Slot{slot}
			}

			if asJSON {
				out := make(map[string][]passJSON, len(slots))
				for _, slot := range slots {
					rules := app.catalog.Rules(slot)
					passes := make([]passJSON, 0, len(rules))
					for _, rule := range rules {
						passes = append(passes, passJSON{Name: rule.Name, Requires: rule.Requires, Max: rule.Max})
					}
					out[slot.String()] = passes
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			for _, slot := range slots {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "list%s:\n", slot)
				for _, rule := range app.catalog.Rules(slot) {
					line := fmt.Sprintf("  %s\tmax=%d", sanitizeForTerminal(rule.Name), rule.Max)
					if len(rule.Requires) > 0 {
						line += "\trequires=" + sanitizeForTerminal(strings.Join(rule.Requires, ","))
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&slotFlag, "slot", "", "Only list this slot (1, 2 or 3)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
