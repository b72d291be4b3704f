// Package tui renders analysis results for the terminal.
// Simple, streaming, no complex TUI - just clean sections and output.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/procflow/procflow/pkg/discovery"
	"github.com/procflow/procflow/pkg/kpi"
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/social"
	"github.com/procflow/procflow/pkg/variants"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFAA00")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// PrintHeader prints the tool banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  PROCFLOW") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Process mining analytics for SAP event logs"))
	fmt.Println()
}

// PrintModel prints a discovered process model summary.
func PrintModel(model *discovery.ProcessModel) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ PROCESS MODEL"))
	fmt.Println(rule)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Cases:"), titleStyle.Render(formatNumber(int64(model.CaseCount))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Events:"), titleStyle.Render(formatNumber(int64(model.EventCount))))
	fmt.Printf("  %s %d\n", mutedStyle.Render("Activities:"), len(model.Activities))
	fmt.Printf("  %s %d\n", mutedStyle.Render("Edges:"), len(model.Edges))
	if len(model.LoopsL1)+len(model.LoopsL2) > 0 {
		fmt.Printf("  %s %d self, %d short\n", mutedStyle.Render("Loops:"), len(model.LoopsL1), len(model.LoopsL2))
	}
	fmt.Println(rule)

	edges := make([]discovery.Edge, len(model.Edges))
	copy(edges, model.Edges)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Frequency > edges[j].Frequency })
	limit := 10
	if len(edges) < limit {
		limit = len(edges)
	}
	for _, e := range edges[:limit] {
		fmt.Printf("  %s %s %s %s\n",
			titleStyle.Render(e.Source),
			mutedStyle.Render("→"),
			titleStyle.Render(e.Target),
			mutedStyle.Render(fmt.Sprintf("(%d, dep %.3f)", e.Frequency, e.Dependency)))
	}
	fmt.Println()
}

// PrintVariants prints a variant analysis summary.
func PrintVariants(result *variants.Result) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ VARIANTS"))
	fmt.Println(rule)
	fmt.Printf("  %s %d\n", mutedStyle.Render("Variants:"), result.TotalVariantCount)
	if result.HappyPath != nil {
		fmt.Printf("  %s %s %s\n",
			mutedStyle.Render("Happy path:"),
			titleStyle.Render(result.HappyPath.Key),
			mutedStyle.Render(fmt.Sprintf("(%.2f%% of cases)", result.ConformantRate)))
	}
	reworkStyle := successStyle
	if result.Rework.ReworkRate > 20 {
		reworkStyle = warnStyle
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("Rework rate:"), reworkStyle.Render(fmt.Sprintf("%.2f%%", result.Rework.ReworkRate)))
	fmt.Printf("  %s %d\n", mutedStyle.Render("Clusters:"), len(result.Clusters))
	fmt.Println()
}

// PrintPerformance prints bottlenecks and SLA status.
func PrintPerformance(result *performance.Result) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ PERFORMANCE"))
	fmt.Println(rule)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Trend:"), renderTrend(result.Trend.Trend))
	for i, b := range result.Bottlenecks {
		if i >= 5 {
			break
		}
		fmt.Printf("  %s %s %s\n",
			titleStyle.Render(b.Name),
			mutedStyle.Render(fmt.Sprintf("median %s ×%d", formatMillis(b.MedianMs), b.Count)),
			mutedStyle.Render("impact "+formatMillis(b.ImpactMs)))
	}
	if result.SLA != nil {
		for _, entry := range result.SLA.Entries {
			fmt.Printf("  %s %s %s\n",
				mutedStyle.Render("SLA "+entry.DisplayName+":"),
				renderSLAStatus(entry.Status),
				mutedStyle.Render(fmt.Sprintf("(%.2f%% compliant)", entry.ComplianceRate)))
		}
	}
	fmt.Println()
}

// PrintSocial prints the resource analysis summary.
func PrintSocial(result *social.Result) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ RESOURCES"))
	fmt.Println(rule)
	fmt.Printf("  %s %d\n", mutedStyle.Render("Resources:"), len(result.Utilization.Resources))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Handovers:"), formatNumber(int64(result.Handover.TotalHandovers)))
	balance := successStyle.Render("balanced")
	if !result.Utilization.IsBalanced {
		balance = warnStyle.Render("unbalanced")
	}
	fmt.Printf("  %s %s %s\n", mutedStyle.Render("Workload:"), balance,
		mutedStyle.Render(fmt.Sprintf("(cv %.3f)", result.Utilization.WorkloadBalance)))
	if result.SoD.TotalViolations > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("SoD:"),
			warnStyle.Render(fmt.Sprintf("%d violation(s)", result.SoD.TotalViolations)))
	} else {
		fmt.Printf("  %s %s\n", mutedStyle.Render("SoD:"), successStyle.Render("compliant"))
	}
	fmt.Println()
}

// PrintKPIReport prints the aggregate KPI view.
func PrintKPIReport(report *kpi.Report) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ KPI REPORT"))
	fmt.Println(rule)
	fmt.Printf("  %s %s cases, %s events\n", mutedStyle.Render("Volume:"),
		formatNumber(int64(report.CaseCount)), formatNumber(int64(report.EventCount)))
	fmt.Printf("  %s median %s, p90 %s\n", mutedStyle.Render("Cycle time:"),
		titleStyle.Render(formatMillis(report.Time.CycleTime.Median)),
		formatMillis(report.Time.CycleTime.P90))
	fmt.Printf("  %s %.2f%% first time right, %.2f%% rework\n", mutedStyle.Render("Quality:"),
		report.Quality.FirstTimeRightRate, report.Quality.ReworkRate)
	if report.Time.TopBottleneck != nil {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Top bottleneck:"),
			titleStyle.Render(report.Time.TopBottleneck.Name))
	}
	for _, p := range report.Process {
		fmt.Printf("  %s %s %s\n",
			mutedStyle.Render(p.Name+":"),
			titleStyle.Render(renderKPIValue(p)),
			mutedStyle.Render(fmt.Sprintf("(%.2f%% within target)", p.CompliancePct)))
	}
	fmt.Println()
}

func renderKPIValue(p kpi.ProcessKPI) string {
	if p.Type == "ratio" {
		return fmt.Sprintf("%.2f%%", p.Value)
	}
	return formatMillis(p.MedianMs)
}

func renderTrend(direction string) string {
	switch direction {
	case "improving":
		return successStyle.Render("improving")
	case "degrading":
		return warnStyle.Render("degrading")
	default:
		return mutedStyle.Render(direction)
	}
}

func renderSLAStatus(status string) string {
	switch status {
	case "met":
		return successStyle.Render("met")
	case "at_risk":
		return warnStyle.Render("at risk")
	case "breached":
		return accentStyle.Render("breached")
	default:
		return mutedStyle.Render(status)
	}
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r\033[K")
}

// formatMillis renders a millisecond span in a human-readable way.
func formatMillis(ms int64) string {
	return formatDuration(time.Duration(ms) * time.Millisecond)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// PrintError prints an error line.
func PrintError(msg string) {
	fmt.Println(accentStyle.Render("  ✗ " + msg))
}

// PrintSuccess prints a success line.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render("  ✓ " + msg))
}

// Indent prefixes every line of s with two spaces.
func Indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
