// Package insights turns aggregated sales figures into short natural
// language observations for the dashboard.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/scoutlabs/retail-pulse/internal/datalake"
)

const (
	// DefaultModelName is the Gemini model used when none is configured.
	DefaultModelName = "gemini-2.5-flash"

	maxPromptProducts = 10
)

// Generator produces dashboard insights with a Gemini model.
type Generator struct {
	model string
}

var _ datalake.InsightsGenerator = (*Generator)(nil)

func NewGenerator(model string) *Generator {
	if model == "" {
		model = DefaultModelName
	}
	return &Generator{model: model}
}

// Generate sends the current KPI snapshot and product leaderboard to the
// model and returns its observations as {"insights": [...]}.
func (g *Generator) Generate(ctx context.Context, kpi datalake.KPIMetrics, products []datalake.ProductPerformance) (json.RawMessage, error) {
	prompt := buildPrompt(kpi, products)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Generate: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var lines []string
	if err := json.Unmarshal([]byte(clean), &lines); err != nil {
		return nil, fmt.Errorf("Generate: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	out, err := json.Marshal(map[string]interface{}{
		"insights":     lines,
		"generated_by": g.model,
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: marshal insights: %w", err)
	}
	return out, nil
}

func buildPrompt(kpi datalake.KPIMetrics, products []datalake.ProductPerformance) string {
	var b strings.Builder
	b.WriteString("You are a retail analytics assistant for sari-sari store sales data in the Philippines.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Write 3 short insights (one sentence each) about the figures below.\n")
	b.WriteString("- Output STRICT JSON only: a JSON array of strings.\n")
	b.WriteString("- Do NOT wrap the response in code fences or Markdown.\n")
	b.WriteString("- Output must begin with \"[\" and end with \"]\".\n\n")

	fmt.Fprintf(&b, "KPIs: total sales %.2f PHP, %d transactions, average basket %.2f PHP, growth rate %.2f%%.\n\n",
		kpi.TotalSales, kpi.TransactionCount, kpi.AvgBasketSize, kpi.GrowthRate)

	b.WriteString("Top products by revenue:\n")
	n := len(products)
	if n > maxPromptProducts {
		n = maxPromptProducts
	}
	for _, p := range products[:n] {
		fmt.Fprintf(&b, "- %s (%s, %s): revenue %.2f, quantity %.0f, %d transactions\n",
			p.ProductName, p.Brand, p.Category, p.Revenue, p.Quantity, p.TransactionCount)
	}
	return b.String()
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
