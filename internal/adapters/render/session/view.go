package session

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Now time.Time
	// Limit caps the number of episodes shown, newest first. Zero shows all.
	Limit int
}

func renderView(episodes []domain.Episode, total int, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("episodes: %d", total)
	if total > len(episodes) {
		header += fmt.Sprintf(" (showing %d most recent)", len(episodes))
	}

	lines := []string{
		s.title.Render("GCC Pass Reordering Episodes"),
		s.header.Render(header),
	}

	if len(episodes) == 0 {
		lines = append(lines, s.empty.Render("No episodes recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, episode := range episodes {
		lines = append(lines, s.section.Render(renderEpisode(episode, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEpisode(episode domain.Episode, opts RenderOptions, s styles) string {
	parts := []string{
		s.episode.Render(fmt.Sprintf("%s (%s)", benchmarkName(episode.Benchmark), episode.ID)),
		s.detail.Render(fmt.Sprintf("targets: %s  steps: %d  recorded: %s", episode.Targets, episode.Steps, formatRecorded(episode.RecordedAt, opts.Now))),
	}

	parts = append(parts, listLines(episode, s)...)
	parts = append(parts, metricLines(episode, s)...)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func listLines(episode domain.Episode, s styles) []string {
	lines := make([]string, 0, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		passes, ok := episode.Lists[slot]
		if !ok {
			continue
		}

		label := s.metricKey.Render(fmt.Sprintf("list%s:", slot))
		if episode.Targets.Contains(slot) {
			label = s.target.Render(fmt.Sprintf("list%s*:", slot))
		}

		body := s.empty.Render("(empty)")
		if len(passes) > 0 {
			body = s.detail.Render(strings.Join(passes, " "))
		}

		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", body))
	}

	return lines
}

func metricLines(episode domain.Episode, s styles) []string {
	var baseSize, baseRuntime *float64
	if episode.Baseline != nil {
		size := float64(episode.Baseline.Size)
		baseSize = &size
		baseRuntime = &episode.Baseline.Runtime
	}

	lines := []string{}
	if episode.Size != nil {
		lines = append(lines, metricLine("size:", fmt.Sprintf("%d B", *episode.Size), float64(*episode.Size), baseSize, s))
	}
	if episode.Runtime != nil {
		lines = append(lines, metricLine("runtime:", fmt.Sprintf("%.3fs", *episode.Runtime), *episode.Runtime, baseRuntime, s))
	}
	if len(lines) == 0 {
		return []string{s.metricMeta.Render("measurements: n/a")}
	}

	return lines
}

func metricLine(key string, formatted string, value float64, base *float64, s styles) string {
	label := s.metricKey.Render(key)
	if base == nil || *base <= 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render(formatted))
	}

	percent := value / *base * 100
	delta := s.better
	if percent > 100 {
		delta = s.worse
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		renderProgressBar(percent, barWidth, s),
		" ",
		s.detail.Render(formatted),
		" ",
		delta.Render(fmt.Sprintf("(%.0f%% of baseline)", percent)),
	)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func benchmarkName(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Host == "" {
		return uri
	}

	return strings.Trim(parsed.Host+parsed.Path, "/")
}

func formatRecorded(recordedAt, now time.Time) string {
	if recordedAt.IsZero() {
		return "unknown"
	}
	if now.IsZero() || recordedAt.After(now) {
		return recordedAt.Format(time.RFC3339)
	}

	elapsed := now.Sub(recordedAt)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d min ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return recordedAt.Format("15:04 on 02 Jan")
	}
}
