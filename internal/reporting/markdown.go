package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Experiment Ranking Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Experiments: %d | Feasible: %d | Indicators: %d\n\n",
		r.ExperimentCount, r.FeasibleCount, len(r.Indicators)))

	// Score Statistics
	sb.WriteString("## Feasible Score Statistics\n\n")
	if r.ScoreStats.Count > 0 {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Count | %d |\n", r.ScoreStats.Count))
		sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", r.ScoreStats.Mean))
		sb.WriteString(fmt.Sprintf("| Std | %.4f |\n", r.ScoreStats.Std))
		sb.WriteString(fmt.Sprintf("| Min | %.4f |\n", r.ScoreStats.Min))
		sb.WriteString(fmt.Sprintf("| Max | %.4f |\n", r.ScoreStats.Max))
	} else {
		sb.WriteString("No feasible experiments.\n")
	}
	sb.WriteString("\n")

	// Ranking
	sb.WriteString("## Ranking\n\n")
	if len(r.Ranking) > 0 {
		sb.WriteString("| Rank | Experiment | System | Portfolio | Automation | Fraction | Score | Feasible | FeasibleRank | Violations |\n")
		sb.WriteString("|------|------------|--------|-----------|------------|----------|-------|----------|--------------|------------|\n")
		for _, row := range r.Ranking {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %.2f | %.4f | %s | %s | %s |\n",
				row.RankAll, row.ExperimentID,
				row.SystemID, row.PortfolioID, row.AutomationID, row.AutomationFraction,
				row.TotalScore, yesNo(row.Feasible), rankOrDash(row.RankFeasible),
				strings.Join(row.Violations, ", ")))
		}
	} else {
		sb.WriteString("No experiments available.\n")
	}
	sb.WriteString("\n")

	// Leaders and laggards
	if len(r.TopFeasible) > 0 {
		sb.WriteString("## Top Feasible Experiments\n\n")
		writeScoreTable(&sb, r.TopFeasible)
	}
	if len(r.BottomFeasible) > 0 {
		sb.WriteString("## Bottom Feasible Experiments\n\n")
		writeScoreTable(&sb, r.BottomFeasible)
	}

	// Group Statistics
	sb.WriteString("## Group Statistics\n\n")
	if len(r.Groups) > 0 {
		currentGroup := ""
		for _, g := range r.Groups {
			if g.GroupID != currentGroup {
				if currentGroup != "" {
					sb.WriteString("\n")
				}
				currentGroup = g.GroupID
				sb.WriteString(fmt.Sprintf("### %s\n\n", g.GroupID))
				sb.WriteString("| Cell | Metric | Count | Mean | Std | Min | Max |\n")
				sb.WriteString("|------|--------|-------|------|-----|-----|-----|\n")
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.4f | %.4f | %.4f | %.4f |\n",
				g.CellKey, g.IndicatorID, g.Count, g.Mean, g.Std, g.Min, g.Max))
		}
	} else {
		sb.WriteString("No group statistics available.\n")
	}
	sb.WriteString("\n")

	// Depth / Break-Even
	sb.WriteString("## Disassembly Depth\n\n")
	if len(r.Depth) > 0 {
		currentProduct := ""
		for _, d := range r.Depth {
			if d.ProductType != currentProduct {
				if currentProduct != "" {
					sb.WriteString("\n")
				}
				currentProduct = d.ProductType
				sb.WriteString(fmt.Sprintf("### %s (baseline %.2f)\n\n", d.ProductType, d.BaselineCost))
				sb.WriteString("| Branch | Step | Components | Step Profit | Cumulative | Break-Even |\n")
				sb.WriteString("|--------|------|------------|-------------|------------|------------|\n")
			}
			marker := ""
			if d.BreakEven {
				marker = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %s |\n",
				d.BranchID, d.StepID, d.Components, d.StepProfit, d.CumulativeProfit, marker))
		}
	} else {
		sb.WriteString("No depth curves available.\n")
	}
	sb.WriteString("\n")

	// Diagnostics
	if len(r.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", d.Code, d.Message))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeScoreTable(sb *strings.Builder, rows []RankingRow) {
	sb.WriteString("| FeasibleRank | Experiment | Score |\n")
	sb.WriteString("|--------------|------------|-------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.4f |\n",
			rankOrDash(row.RankFeasible), row.ExperimentID, row.TotalScore))
	}
	sb.WriteString("\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func rankOrDash(rank *int) string {
	if rank == nil {
		return "-"
	}
	return strconv.Itoa(*rank)
}
