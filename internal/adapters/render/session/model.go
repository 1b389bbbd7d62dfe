package session

import (
	"errors"
	"io"
	"slices"

	"github.com/bnema/gccpr/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	episodes []domain.Episode
	total    int
	opts     RenderOptions
	styles   styles
	output   string
}

// newModel orders episodes newest first and keeps at most opts.Limit of them.
// Episodes without a recorded time sort last.
func newModel(episodes []domain.Episode, opts RenderOptions) model {
	ordered := slices.Clone(episodes)
	slices.SortStableFunc(ordered, func(a, b domain.Episode) int {
		switch {
		case a.RecordedAt.IsZero() && b.RecordedAt.IsZero():
			return 0
		case a.RecordedAt.IsZero():
			return 1
		case b.RecordedAt.IsZero():
			return -1
		}
		return b.RecordedAt.Compare(a.RecordedAt)
	})
	if opts.Limit > 0 && len(ordered) > opts.Limit {
		ordered = ordered[:opts.Limit]
	}

	return model{
		episodes: ordered,
		total:    len(episodes),
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.episodes, m.total, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(episodes []domain.Episode, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(episodes, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
