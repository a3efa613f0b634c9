package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/model"
)

const barWidth = 20

// RenderReport writes a human-readable report of res, and of fit when it
// is not nil.
func RenderReport(w io.Writer, name string, res *model.Result, fit *audience.Fit) error {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("Attention risk: " + name))
	sb.WriteString("\n")

	s := res.Summary
	kv(&sb, "Duration", fmt.Sprintf("%.1fs", res.Duration))
	kv(&sb, "Drop risk", s.DropRisk)
	kv(&sb, "Jargon density", s.JargonDensity.Label())
	kv(&sb, "Speech rate", fmt.Sprintf("%.0f wpm", s.OverallSpeechRate))
	kv(&sb, "Reading ease", fmt.Sprintf("%.1f", s.ReadingEase))
	kv(&sb, "Filler words", fmt.Sprintf("%d (%s)", s.FillerWordCount, res.FillerPattern))

	section(&sb, "Critical moment")
	if len(res.CriticalMoments) == 0 {
		sb.WriteString(MutedStyle.Render("No critical moment detected."))
		sb.WriteString("\n")
	}
	for _, m := range res.CriticalMoments {
		body := fmt.Sprintf("%s - %s  %s\n%s", m.Start, m.End, riskStyle(m.RiskValue).Render(m.Risk+" risk"), m.Description)
		if len(m.DetailedProblems) > 0 {
			body += "\n- " + strings.Join(m.DetailedProblems, "\n- ")
		}
		if m.SegmentText != "" {
			body += "\n" + MutedStyle.Render(quote(m.SegmentText))
		}
		sb.WriteString(MomentStyle.Render(body))
		sb.WriteString("\n")
	}

	section(&sb, "Timeline")
	for _, p := range res.Timeline {
		sb.WriteString(timelineRow(p))
		sb.WriteString("\n")
	}

	section(&sb, "Suggestions")
	for i, sg := range s.Suggestions {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, ValueStyle.Render(sg.Title), sg.Description)
	}

	if fit != nil {
		section(&sb, "Audience fit: "+fit.Audience)
		kv(&sb, "Fit score", riskStyle(100-fit.FitScore).Render(fmt.Sprintf("%d/100", fit.FitScore)))
		kv(&sb, "Pace", fit.StructuralInsights.PaceAssessment)
		kv(&sb, "Complexity", fit.StructuralInsights.ComplexityMatch)
		kv(&sb, "Directness", fit.StructuralInsights.Directness)
		for _, m := range fit.Mismatches {
			sb.WriteString("  ! " + m + "\n")
		}
		for _, sg := range fit.Suggestions {
			sb.WriteString("  > " + sg + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func kv(sb *strings.Builder, key, value string) {
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, KeyStyle.Render(key+":"), ValueStyle.Render(value)))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(SectionStyle.Render(title))
	sb.WriteString("\n")
}

// timelineRow draws one sample as a clock label, a bar scaled to the risk
// and the reason codes.
func timelineRow(p model.TimelinePoint) string {
	filled := p.Risk * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	row := fmt.Sprintf("%s %s %3d", p.Time, riskStyle(p.Risk).Render(bar), p.Risk)
	if reasons := p.Reasons(); len(reasons) > 0 {
		row += " " + MutedStyle.Render(strings.Join(reasons, ", "))
	}
	if p.Critical {
		row += " " + ErrorStyle.Render("<< "+p.Label)
	}
	return row
}

func quote(text string) string {
	const limit = 120
	if r := []rune(text); len(r) > limit {
		text = string(r[:limit]) + "..."
	}
	return "\"" + text + "\""
}
