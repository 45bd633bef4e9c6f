package agent

import (
	"fmt"
	"strings"

	"github.com/meridianbi/boardpulse/analytics"
)

const systemPrompt = `You are a business intelligence assistant for a geospatial services company.
You answer questions about the sales pipeline (Deals) and operations (Work Orders).

Rules:
- Use ONLY the figures provided in the DATA CONTEXT. Never invent numbers.
- Amounts are in INR; use the Cr/L/K shorthand already present in the context.
- Be direct and concise. Lead with the number, then one line of reading.
- If the context says data quality is reduced, say so briefly.
- If the context does not cover the question, say what is missing instead of guessing.`

func classifyPrompt(question string) string {
	return fmt.Sprintf(`Classify which data boards this question needs.

Boards:
- "deals": sales pipeline, deal values, win rates, sectors, owners, stages, close dates
- "work_orders": project execution, billing, collections, receivables (AR), platforms, quantities

Question: %s

Reply with exactly one JSON object and nothing else:
{"boards": ["deals"]} or {"boards": ["work_orders"]} or {"boards": ["deals", "work_orders"]}`, question)
}

func answerPrompt(question string, history []Turn, contextText string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "DATA CONTEXT:\n%s\n\nQUESTION: %s", contextText, question)
	return b.String()
}

func insightPrompt(res *analytics.PivotResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is a %s-by-%s breakdown over %d records:\n", res.Metric, res.Dimension, res.Records)
	for _, row := range res.Rows {
		fmt.Fprintf(&b, "- %s: %s\n", row.Key, formatValue(row.Value, res.ValueKind))
	}
	b.WriteString("\nWrite a 2-3 sentence insight: the leader, its share, and one notable pattern. No preamble.")
	return b.String()
}

func briefingPrompt(contextText string) string {
	return fmt.Sprintf(`Write a leadership update from the figures below.

Format:
- "Pipeline" section: open value, win rate, what needs attention
- "Billing & Collections" section: gap, efficiency, top receivables
- "Execution" section: work order status, anything stuck
Keep it under 250 words, bullet style, numbers first.

%s`, contextText)
}

func formatValue(v float64, kind string) string {
	switch kind {
	case "currency":
		return analytics.FormatINR(v)
	case "ratio":
		return analytics.FormatPercent(v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
