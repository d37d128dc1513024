package insights

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foliolens/foliolens/pkg/formulas"
)

// buildInsights runs the rule set over the portfolio metrics and holding
// views. Rules are evaluated in a fixed order so the output is stable for
// a given input.
func buildInsights(metrics *formulas.RiskMetrics, holdings []HoldingView, diversificationScore float64) []Insight {
	insights := []Insight{}

	add := func(t InsightType, sev Severity, title, description, basis, recommendation string) {
		insights = append(insights, Insight{
			ID:                uuid.NewString(),
			Type:              t,
			Severity:          sev,
			Title:             title,
			Description:       description,
			MathematicalBasis: basis,
			Recommendation:    recommendation,
		})
	}

	// Risk-adjusted performance
	if metrics.SharpeRatio > 1.5 {
		add(TypeOpportunity, SeverityLow,
			"Excellent Risk-Adjusted Returns",
			fmt.Sprintf("Your portfolio has a Sharpe ratio of %.2f, indicating excellent risk-adjusted performance. You're earning %.2f units of return for each unit of risk taken.",
				metrics.SharpeRatio, metrics.SharpeRatio),
			fmt.Sprintf("Sharpe Ratio = (Return - Risk-Free Rate) / Volatility = %.2f", metrics.SharpeRatio),
			"Continue current strategy while monitoring for regime changes.")
	} else if metrics.SharpeRatio < 0.5 {
		add(TypeRisk, SeverityHigh,
			"Poor Risk-Adjusted Returns",
			fmt.Sprintf("Your portfolio has a Sharpe ratio of %.2f, which is below acceptable levels. You're taking significant risk without adequate compensation.",
				metrics.SharpeRatio),
			fmt.Sprintf("Sharpe Ratio = %.2f (Target: > 1.0)", metrics.SharpeRatio),
			"Consider rebalancing into higher quality assets or reducing volatility exposure.")
	}

	// Concentration risk
	if len(holdings) > 0 {
		concentrated := holdings[0]
		for _, h := range holdings[1:] {
			if h.Allocation > concentrated.Allocation {
				concentrated = h
			}
		}
		if concentrated.Allocation > 25 {
			add(TypeRisk, SeverityHigh,
				"Concentration Risk Detected",
				fmt.Sprintf("%s represents %.1f%% of your portfolio, creating concentration risk. Portfolio theory suggests maximum 15-20%% per position.",
					concentrated.Symbol, concentrated.Allocation),
				fmt.Sprintf("Herfindahl Index indicates concentration. Optimal diversification: %.1f%% per position.",
					100/float64(len(holdings))),
				fmt.Sprintf("Reduce %s position to ~15%% and diversify into uncorrelated assets.", concentrated.Symbol))
		}
	}

	// Diversification
	if diversificationScore < 60 {
		add(TypeRebalance, SeverityMedium,
			"Low Diversification",
			fmt.Sprintf("Your diversification score is %.1f/100, indicating suboptimal diversification. This increases portfolio-specific risk.",
				diversificationScore),
			"Diversification Score = 100 * (1 - Herfindahl Index) / (1 - 1/n)",
			"Add uncorrelated assets or rebalance to more equal weights.")
	}

	// Alpha generation
	if metrics.Alpha > 0.03 {
		add(TypeOpportunity, SeverityLow,
			"Generating Positive Alpha",
			fmt.Sprintf("Your portfolio is generating %.2f%% alpha, outperforming the market on a risk-adjusted basis. This suggests skillful selection or favorable market conditions.",
				metrics.Alpha*100),
			fmt.Sprintf("Alpha = Actual Return - Expected Return (CAPM) = %.2f%%", metrics.Alpha*100),
			"Monitor to determine if alpha is sustainable or due to temporary factors.")
	} else if metrics.Alpha < -0.03 {
		add(TypeRisk, SeverityMedium,
			"Negative Alpha",
			fmt.Sprintf("Your portfolio is generating %.2f%% negative alpha, underperforming the market on a risk-adjusted basis.",
				metrics.Alpha*100),
			fmt.Sprintf("Alpha = %.2f%% (Target: > 0%%)", metrics.Alpha*100),
			"Consider passive index funds or reassess stock selection strategy.")
	}

	// Drawdown risk
	if metrics.MaxDrawdown > 0.25 {
		add(TypeRisk, SeverityHigh,
			"High Drawdown Risk",
			fmt.Sprintf("Your portfolio has experienced a maximum drawdown of %.1f%%, indicating high volatility and potential for large losses.",
				metrics.MaxDrawdown*100),
			fmt.Sprintf("Max Drawdown = %.1f%% (Acceptable: < 20%%)", metrics.MaxDrawdown*100),
			"Consider adding defensive positions or implementing stop-loss strategies.")
	}

	// Market sensitivity
	if metrics.Beta > 1.3 {
		add(TypeRisk, SeverityMedium,
			"High Market Sensitivity",
			fmt.Sprintf("Your portfolio has a beta of %.2f, meaning it's %.0f%% more volatile than the market. This amplifies both gains and losses.",
				metrics.Beta, (metrics.Beta-1)*100),
			fmt.Sprintf("Beta = Covariance(Portfolio, Market) / Variance(Market) = %.2f", metrics.Beta),
			"Consider adding low-beta stocks or bonds to reduce market sensitivity.")
	} else if metrics.Beta < 0.7 {
		add(TypeOpportunity, SeverityLow,
			"Low Market Sensitivity",
			fmt.Sprintf("Your portfolio has a beta of %.2f, providing downside protection but potentially limiting upside in bull markets.",
				metrics.Beta),
			fmt.Sprintf("Beta = %.2f (Market = 1.0)", metrics.Beta),
			"Current positioning is defensive. Consider increasing beta if expecting bull market.")
	}

	// Per-holding standouts
	var strongBuys, sells []string
	for _, h := range holdings {
		switch h.Recommendation {
		case ActionStrongBuy:
			strongBuys = append(strongBuys, h.Symbol)
		case ActionSell, ActionStrongSell:
			sells = append(sells, h.Symbol)
		}
	}

	if len(strongBuys) > 0 {
		add(TypeOpportunity, SeverityMedium,
			"Strong Performers Identified",
			fmt.Sprintf("%s show excellent risk-adjusted metrics. Consider increasing allocation to these positions.",
				strings.Join(strongBuys, ", ")),
			"Based on Sharpe ratio, alpha, and drawdown analysis.",
			"Consider increasing allocation to top performers while maintaining diversification.")
	}

	if len(sells) > 0 {
		add(TypeRebalance, SeverityHigh,
			"Underperforming Positions",
			fmt.Sprintf("%s show poor risk-adjusted metrics. Consider reducing or exiting these positions.",
				strings.Join(sells, ", ")),
			"Based on negative alpha, high drawdown, or poor Sharpe ratio.",
			"Review these positions and consider reallocation to stronger performers.")
	}

	return insights
}
