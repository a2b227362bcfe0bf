package reporting

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderRankingCSV renders the ranking table as CSV string. Indicator
// columns follow the report's sorted indicator list, raw before normalized.
func RenderRankingCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("experiment_id,system_id,portfolio_id,automation_id,automation_fraction")
	for _, id := range r.Indicators {
		sb.WriteString(",raw_" + id)
	}
	for _, id := range r.Indicators {
		sb.WriteString(",norm_" + id)
	}
	sb.WriteString(",feasible,violations,total_score,rank_all,rank_feasible\n")

	// Rows
	for _, row := range r.Ranking {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.4f",
			row.ExperimentID,
			row.SystemID,
			row.PortfolioID,
			row.AutomationID,
			row.AutomationFraction,
		))
		for _, id := range r.Indicators {
			sb.WriteString(",")
			if v, ok := row.Raw[id]; ok {
				sb.WriteString(fmt.Sprintf("%.6f", v))
			}
		}
		for _, id := range r.Indicators {
			sb.WriteString(",")
			if v, ok := row.Normalized[id]; ok {
				sb.WriteString(fmt.Sprintf("%.6f", v))
			}
		}

		rankFeasible := ""
		if row.RankFeasible != nil {
			rankFeasible = strconv.Itoa(*row.RankFeasible)
		}
		sb.WriteString(fmt.Sprintf(",%t,%s,%.6f,%d,%s\n",
			row.Feasible,
			strings.Join(row.Violations, ";"),
			row.TotalScore,
			row.RankAll,
			rankFeasible,
		))
	}

	return sb.String()
}

// RenderGroupCSV renders group statistics as CSV string.
func RenderGroupCSV(rows []GroupRow) string {
	var sb strings.Builder

	sb.WriteString("group_id,cell_key,metric,count,mean,std,min,max\n")
	for _, g := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.6f,%.6f,%.6f,%.6f\n",
			g.GroupID, g.CellKey, g.IndicatorID,
			g.Count, g.Mean, g.Std, g.Min, g.Max))
	}

	return sb.String()
}

// RenderDepthCSV renders depth curves as CSV string.
func RenderDepthCSV(rows []DepthRow) string {
	var sb strings.Builder

	sb.WriteString("product_type,branch_id,step_id,components,step_profit,cumulative_profit,baseline_cost,break_even\n")
	for _, d := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.6f,%t\n",
			d.ProductType, d.BranchID, d.StepID,
			strings.ReplaceAll(d.Components, ",", ";"),
			d.StepProfit, d.CumulativeProfit, d.BaselineCost, d.BreakEven))
	}

	return sb.String()
}
