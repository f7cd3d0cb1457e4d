package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/opercjy/CPNR-modular-sim/internal/run"
)

// Spectrum plots h, merging bins so that at most width points are drawn.
func Spectrum(h *run.Histogram, width, height int, caption string) string {
	if h == nil || h.Entries() == 0 {
		return Subtle.Render("(empty spectrum)")
	}
	n := (len(h.Counts) + width - 1) / width
	r := h.Rebin(n)
	return asciigraph.Plot(r.Counts,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s  [%.1f-%.1f MeV, %.3g MeV/bin]", caption, r.Min, r.Max, r.BinWidth())),
	)
}

// SummaryTable renders the run statistics.
func SummaryTable(s run.Summary) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, MetricLabel.Render(label), MetricValue.Render(value))
	}

	var b strings.Builder
	b.WriteString(Title.Render("Run summary") + "\n")
	b.WriteString(row("events", fmt.Sprintf("%d", s.Events)) + "\n")
	b.WriteString(row("visible energy", fmt.Sprintf("%.3f ± %.3f MeV", s.MeanVisible, s.StdVisible)) + "\n")
	b.WriteString(row("multiplicity", fmt.Sprintf("%.2f", s.MeanMultiplicity)) + "\n")
	b.WriteString(row("recoil", fmt.Sprintf("%.3f keV", s.MeanRecoil)) + "\n")
	b.WriteString(row("recoils omitted", fmt.Sprintf("%d", s.RecoilsOmitted)) + "\n")
	b.WriteString(row("max residual", fmt.Sprintf("%.2e MeV", s.MaxResidual)) + "\n")

	b.WriteString(Separator(36) + "\n")

	targets := make([]string, 0, len(s.Captures))
	for iso := range s.Captures {
		targets = append(targets, iso)
	}
	sort.Slice(targets, func(i, j int) bool { return s.Captures[targets[i]] > s.Captures[targets[j]] })
	for _, iso := range targets {
		frac := float64(s.Captures[iso]) / float64(max(s.Events, 1))
		b.WriteString(row("  "+iso, fmt.Sprintf("%6d  %5.1f%%", s.Captures[iso], 100*frac)) + "\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
