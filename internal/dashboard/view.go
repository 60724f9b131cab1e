package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants. Widths adapt to the terminal but never go below
// these minimums.
const (
	minSparklineWidth = 20
	maxSparklineWidth = 60
	barWidth          = 20
)

// render renders the complete dashboard view.
func (m Model) render() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.snap == nil {
		if m.err == nil {
			b.WriteString(m.spinner.View())
			b.WriteString(LabelStyle.Render(" connecting to " + m.host + "..."))
		}
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
		return b.String()
	}

	b.WriteString(m.renderMetrics())
	b.WriteString("\n")

	if disks := m.renderDisks(); disks != "" {
		b.WriteString(disks)
		b.WriteString("\n")
	}

	if containers := m.renderContainers(); containers != "" {
		b.WriteString(containers)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title line with host and uptime.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("remon")
	parts := []string{title, LabelStyle.Render(m.host)}

	if m.snap != nil {
		parts = append(parts, MutedStyle.Render("up "+FormatUptime(m.snap.Uptime)))
	}
	if m.collecting {
		parts = append(parts, m.spinner.View())
	}

	return HeaderStyle.Render(strings.Join(parts, "  "))
}

// renderMetrics renders the CPU, memory, and network rows.
func (m Model) renderMetrics() string {
	sparkWidth := m.sparklineWidth()
	var rows []string

	cpu := m.snap.CPU
	rows = append(rows, m.metricRow(
		fmt.Sprintf("CPU  %5.1f%%", cpu.UsagePercent),
		RenderBar(barWidth, cpu.UsagePercent),
		RenderSparkline(m.history.CPU(sparkWidth), sparkWidth),
		MutedStyle.Render(fmt.Sprintf("%d cores, load %.2f %.2f %.2f",
			cpu.Cores, cpu.LoadAvg[0], cpu.LoadAvg[1], cpu.LoadAvg[2])),
	))

	mem := m.snap.Memory
	rows = append(rows, m.metricRow(
		fmt.Sprintf("MEM  %5.1f%%", mem.UsagePercent),
		RenderBar(barWidth, mem.UsagePercent),
		RenderSparkline(m.history.Memory(sparkWidth), sparkWidth),
		MutedStyle.Render(fmt.Sprintf("%s / %s",
			FormatBytes(mem.UsedBytes), FormatBytes(mem.TotalBytes))),
	))

	rxHist, txHist := m.history.NetworkRates(sparkWidth)
	var rx, tx float64
	if len(rxHist) > 0 {
		rx = rxHist[len(rxHist)-1]
	}
	if len(txHist) > 0 {
		tx = txHist[len(txHist)-1]
	}
	rows = append(rows, m.metricRow(
		"NET",
		fmt.Sprintf("%s↓ %s↑",
			ValueStyle.Render(FormatRate(rx)), ValueStyle.Render(FormatRate(tx))),
		RenderRateSparkline(rxHist, sparkWidth, ColorGraph),
		"",
	))

	return SectionStyle.Render(strings.Join(rows, "\n"))
}

// metricRow lays out one label, gauge, sparkline, and detail text.
func (m Model) metricRow(label, gauge, sparkline, detail string) string {
	parts := []string{ValueStyle.Render(fmt.Sprintf("%-12s", label)), gauge}
	if sparkline != "" {
		parts = append(parts, sparkline)
	}
	if detail != "" {
		parts = append(parts, detail)
	}
	return strings.Join(parts, "  ")
}

// renderDisks renders a compact per-mount usage table.
func (m Model) renderDisks() string {
	if len(m.snap.Disks) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, LabelStyle.Render("DISKS"))
	for _, disk := range m.snap.Disks {
		pct := disk.UsagePercent
		pctStyle := lipgloss.NewStyle().Foreground(MetricColor(pct))
		rows = append(rows, fmt.Sprintf("%s  %s  %s",
			ValueStyle.Render(fmt.Sprintf("%-20s", truncate(disk.Mount, 20))),
			RenderBar(barWidth, pct),
			pctStyle.Render(fmt.Sprintf("%5.1f%%"+"  %s free", pct, FormatBytes(disk.FreeBytes))),
		))
	}

	return SectionStyle.Render(strings.Join(rows, "\n"))
}

// renderContainers renders the running container list.
func (m Model) renderContainers() string {
	if len(m.snap.Containers) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, LabelStyle.Render(fmt.Sprintf("CONTAINERS (%d)", len(m.snap.Containers))))
	for _, c := range m.snap.Containers {
		rows = append(rows, fmt.Sprintf("%s  %s  %s",
			ValueStyle.Render(fmt.Sprintf("%-20s", truncate(c.Name, 20))),
			MutedStyle.Render(fmt.Sprintf("%-30s", truncate(c.Image, 30))),
			LabelStyle.Render(c.Status),
		))
	}

	return SectionStyle.Render(strings.Join(rows, "\n"))
}

// renderFooter renders the key hints and update age.
func (m Model) renderFooter() string {
	age := m.SecondsSinceUpdate()
	var updateText string
	switch {
	case m.lastUpdate.IsZero():
		updateText = "waiting for first update"
	case age == 0:
		updateText = "updated just now"
	case age == 1:
		updateText = "updated 1s ago"
	default:
		updateText = fmt.Sprintf("updated %ds ago", age)
	}

	return FooterStyle.Render(fmt.Sprintf("q quit · refresh %s · %s", m.interval, updateText))
}

// sparklineWidth adapts the sparkline to the terminal width.
func (m Model) sparklineWidth() int {
	if m.width == 0 {
		return minSparklineWidth
	}

	w := m.width - barWidth - 40
	if w < minSparklineWidth {
		return minSparklineWidth
	}
	if w > maxSparklineWidth {
		return maxSparklineWidth
	}
	return w
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
