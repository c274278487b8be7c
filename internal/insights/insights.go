// Package insights produces a plain-language narrative for a pipeline
// quality report using a generative model.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/banking-pipeline/internal/etl"
)

// DefaultModelName is the Gemini model used for report narratives.
const DefaultModelName = "gemini-2.5-flash"

// Summarizer turns a quality report into prose. Implementations may
// call a model or return canned text in tests.
type Summarizer interface {
	Summarize(ctx context.Context, report *etl.Report) (string, error)
}

// GeminiSummarizer is the Gemini-backed Summarizer. Credentials come
// from the environment, the same way the rest of the GCP stack does.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a summarizer with the default model.
func NewGeminiSummarizer(ctx context.Context) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSummarizer: create genai client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: DefaultModelName}, nil
}

// Summarize sends the report to the model and returns its commentary.
func (s *GeminiSummarizer) Summarize(ctx context.Context, report *etl.Report) (string, error) {
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Summarize: encode report: %w", err)
	}

	prompt := buildReportPrompt(string(reportJSON))

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Summarize: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Summarize: empty response from model")
	}

	return cleanModelText(text), nil
}

func buildReportPrompt(reportJSON string) string {
	return "You are a data quality analyst for a banking data pipeline.\n\n" +
		"Task:\n" +
		"- Read the JSON quality report below from one pipeline run.\n" +
		"- Write a short plain-language summary for a non-technical reader.\n" +
		"- Cover: how much data survived cleaning, overall customer data quality,\n" +
		"  and how many transactions were flagged as anomalous.\n" +
		"- Call out anything unusual, such as a high drop rate or anomaly rate.\n\n" +
		"Rules:\n" +
		"- At most 5 sentences.\n" +
		"- Plain prose only. No Markdown, no code fences, no bullet points.\n" +
		"- Do not repeat raw field names from the JSON.\n\n" +
		"Report:\n" + reportJSON + "\n"
}

// cleanModelText strips Markdown fences when the model ignores the
// formatting instructions.
func cleanModelText(raw string) string {
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

	return strings.TrimSpace(s)
}

var _ Summarizer = (*GeminiSummarizer)(nil)
