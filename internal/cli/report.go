package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/olist-data/refinery/internal/model"
)

// SeverityStyle returns the style matching an anomaly severity.
func SeverityStyle(severity model.Severity) lipgloss.Style {
	switch severity {
	case model.SeverityCritical:
		return ErrorStyle
	case model.SeverityWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}

// RenderReport renders a quality report for the terminal.
func RenderReport(report *model.QualityReport) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Data Quality Report"))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("Generated " + report.GeneratedAt.Format(time.RFC1123)))
	b.WriteString("\n\n")

	summary := fmt.Sprintf("Anomalies: %d    Resolved: %d    Unresolved critical: %d",
		report.TotalAnomalies, report.TotalResolved, len(report.UnresolvedCritical))
	b.WriteString(BoldStyle.Render(summary))
	b.WriteString("\n")

	if len(report.KindCounts) > 0 {
		b.WriteString("\n")
		b.WriteString(TableHeaderStyle.Render("Anomalies by kind"))
		b.WriteString("\n")
		for _, kc := range report.KindCounts {
			b.WriteString(TableCellStyle.Render(fmt.Sprintf("%-40s %6d", kc.Kind, kc.Count)))
			b.WriteString("\n")
		}
	}

	if len(report.Scores) > 0 {
		b.WriteString("\n")
		b.WriteString(TableHeaderStyle.Render("Quality scores"))
		b.WriteString("\n")
		for _, score := range report.Scores {
			b.WriteString(TableCellStyle.Render(fmt.Sprintf(
				"%-10s records=%-8d completeness=%.4f uniqueness=%.4f consistency=%.4f",
				score.EntityType, score.Records,
				score.Completeness, score.Uniqueness, score.Consistency)))
			b.WriteString("\n")
		}
	}

	if len(report.Standardization) > 0 {
		b.WriteString("\n")
		b.WriteString(TableHeaderStyle.Render("City standardization"))
		b.WriteString("\n")
		for _, stats := range report.Standardization {
			b.WriteString(TableCellStyle.Render(fmt.Sprintf(
				"%-10s total=%-8d corrected=%-6d unchanged=%-8d unmatched=%d",
				stats.EntityType, stats.Total, stats.Corrected, stats.Unchanged, stats.Unmatched)))
			b.WriteString("\n")
		}
	}

	if len(report.UnresolvedCritical) > 0 {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Bold(true).Render("Unresolved critical anomalies"))
		b.WriteString("\n")
		for _, rec := range report.UnresolvedCritical {
			line := fmt.Sprintf("%s %s/%s: %s", ErrorIcon, rec.EntityType, rec.EntityID, rec.Kind)
			if rec.Detail != "" {
				line += " " + SubtleStyle.Render("("+rec.Detail+")")
			}
			b.WriteString(SeverityStyle(rec.Severity).Render(line))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\n")
		b.WriteString(FormatSuccess("No unresolved critical anomalies"))
		b.WriteString("\n")
	}

	return b.String()
}
