package insights

import (
	"fmt"
	"strings"
)

// FormatReport renders the analysis as a markdown report suitable for
// downstream text consumers.
func FormatReport(result *QuantitativeInsights) string {
	var b strings.Builder

	b.WriteString("# QUANTITATIVE ANALYSIS RESULTS\n\n")

	b.WriteString("## Portfolio Risk Metrics\n")
	sharpeLabel := "(Needs Improvement)"
	if result.Portfolio.SharpeRatio > 1 {
		sharpeLabel = "(Good)"
	}
	fmt.Fprintf(&b, "- **Sharpe Ratio:** %.2f %s\n", result.Portfolio.SharpeRatio, sharpeLabel)
	fmt.Fprintf(&b, "- **Beta:** %.2f (Market sensitivity)\n", result.Portfolio.Beta)
	alphaLabel := "(Underperforming)"
	if result.Portfolio.Alpha > 0 {
		alphaLabel = "(Outperforming)"
	}
	fmt.Fprintf(&b, "- **Alpha:** %.2f%% %s\n", result.Portfolio.Alpha*100, alphaLabel)
	fmt.Fprintf(&b, "- **Max Drawdown:** %.1f%%\n", result.Portfolio.MaxDrawdown*100)
	fmt.Fprintf(&b, "- **95%% VaR:** $%.2f\n", result.Portfolio.VaR95)
	fmt.Fprintf(&b, "- **Volatility:** %.1f%% annualized\n", result.Portfolio.Volatility*100)
	fmt.Fprintf(&b, "- **Diversification Score:** %.1f/100\n\n", result.Portfolio.DiversificationScore)

	b.WriteString("## Individual Holdings Analysis\n")
	for _, holding := range result.Holdings {
		fmt.Fprintf(&b, "\n### %s (%.1f%% allocation)\n", holding.Symbol, holding.Allocation)
		fmt.Fprintf(&b, "- Sharpe Ratio: %.2f\n", holding.SharpeRatio)
		fmt.Fprintf(&b, "- Beta: %.2f\n", holding.Beta)
		fmt.Fprintf(&b, "- Volatility: %.1f%%\n", holding.Volatility*100)
		fmt.Fprintf(&b, "- Max Drawdown: %.1f%%\n", holding.MaxDrawdown*100)
		fmt.Fprintf(&b, "- **Recommendation:** %s (%d%% confidence)\n",
			strings.ToUpper(string(holding.Recommendation)), holding.Confidence)
	}
	b.WriteString("\n")

	b.WriteString("## Key Insights\n")
	for i, insight := range result.Insights {
		fmt.Fprintf(&b, "\n### %d. %s [%s %s]\n", i+1, insight.Title,
			strings.ToUpper(string(insight.Severity)), strings.ToUpper(string(insight.Type)))
		fmt.Fprintf(&b, "%s\n\n", insight.Description)
		fmt.Fprintf(&b, "**Mathematical Basis:** %s\n", insight.MathematicalBasis)
		if insight.Recommendation != "" {
			fmt.Fprintf(&b, "**Recommendation:** %s\n", insight.Recommendation)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Market Context\n")
	fmt.Fprintf(&b, "- **Regime:** %s market\n", strings.ToUpper(string(result.MarketContext.Regime)))
	fmt.Fprintf(&b, "- **Volatility:** %s\n", strings.ToUpper(string(result.MarketContext.Volatility)))
	fmt.Fprintf(&b, "- **Sentiment:** %s\n", result.MarketContext.Sentiment)

	return b.String()
}
