// Package agent is the LLM boundary of the engine. It classifies questions
// to boards, and turns engine-built numeric context into narrative answers.
//
// Nothing numeric is delegated to the model: the engine computes every
// figure and hands the model prose-ready context. Classification failures
// degrade to "query both boards" so the pipeline never blocks on the model.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridianbi/boardpulse/analytics"
	"github.com/meridianbi/boardpulse/normalize"
)

// Generator produces one completion. *Gemini satisfies it; tests substitute
// a canned implementation.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Turn is one prior exchange of the conversation.
type Turn struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Agent routes questions and narrates analytics.
type Agent struct {
	generator Generator
	logger    *slog.Logger
}

// New builds an agent over generator.
func New(generator Generator, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{generator: generator, logger: logger}
}

// Classify decides which boards a question needs. Any failure, model or
// parse, falls back to both boards: a wasted fetch is cheaper than a wrong
// refusal.
func (a *Agent) Classify(ctx context.Context, question string) []normalize.BoardKind {
	both := []normalize.BoardKind{normalize.KindDeals, normalize.KindWorkOrders}

	reply, err := a.generator.Generate(ctx, "", classifyPrompt(question))
	if err != nil {
		a.logger.WarnContext(ctx, "board classification failed, querying both boards", "error", err)
		return both
	}

	boards, err := parseBoards(reply)
	if err != nil || len(boards) == 0 {
		a.logger.WarnContext(ctx, "unparseable classification reply, querying both boards",
			"reply_snippet", snippet(reply, 120), "error", err)
		return both
	}
	return boards
}

// Answer narrates an answer to question over the engine-built contextText.
func (a *Agent) Answer(ctx context.Context, question string, history []Turn, contextText string) (string, error) {
	reply, err := a.generator.Generate(ctx, systemPrompt, answerPrompt(question, history, contextText))
	if err != nil {
		return "", fmt.Errorf("agent: answer generation: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// AdhocInsight produces a short reading of a pivot result. On model failure
// it degrades to a deterministic sentence built from the numbers, so the
// endpoint always returns an insight.
func (a *Agent) AdhocInsight(ctx context.Context, res *analytics.PivotResult) string {
	reply, err := a.generator.Generate(ctx, systemPrompt, insightPrompt(res))
	if err == nil {
		if text := strings.TrimSpace(reply); text != "" {
			return text
		}
	}
	if err != nil {
		a.logger.WarnContext(ctx, "insight generation failed, using fallback", "error", err)
	}
	return fallbackInsight(res)
}

// LeadershipBriefing formats the leadership context into a briefing. On
// model failure the raw context text is returned so the update still ships.
func (a *Agent) LeadershipBriefing(ctx context.Context, l analytics.Leadership) string {
	contextText := LeadershipContext(l)
	reply, err := a.generator.Generate(ctx, systemPrompt, briefingPrompt(contextText))
	if err != nil {
		a.logger.WarnContext(ctx, "briefing generation failed, returning raw context", "error", err)
		return contextText
	}
	if text := strings.TrimSpace(reply); text != "" {
		return text
	}
	return contextText
}

// fallbackInsight renders the pivot headline without the model.
func fallbackInsight(res *analytics.PivotResult) string {
	if res.Top == nil {
		return fmt.Sprintf("No data available for %s by %s.", res.Metric, res.Dimension)
	}
	var value string
	switch res.ValueKind {
	case "currency":
		value = analytics.FormatINR(res.Top.Value)
	case "ratio":
		value = analytics.FormatPercent(res.Top.Value)
	default:
		value = fmt.Sprintf("%.0f", res.Top.Value)
	}
	return fmt.Sprintf("%s leads %s by %s at %s across %d records.",
		res.Top.Key, res.Metric, res.Dimension, value, res.Records)
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
