package pdfimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

var (
	// ErrAIUnavailable is returned when the extraction model fails or replies
	// with something other than the expected JSON.
	ErrAIUnavailable = errors.New("line-item extraction failed")
	// ErrAITimeout is returned when the extraction model does not answer in time.
	ErrAITimeout = errors.New("line-item extraction timed out")
)

// ExtractedQuote is the structured content of a quote document.
type ExtractedQuote struct {
	QuoteNumber  *string             `json:"quoteNumber"`
	CustomerName *string             `json:"customerName"`
	QuoteDate    *string             `json:"quoteDate"`
	QuoteTotal   *float64            `json:"quoteTotal"`
	LineItems    []ExtractedLineItem `json:"lineItems"`
}

// ExtractedLineItem is one priced line of a quote document.
type ExtractedLineItem struct {
	Unit               *string  `json:"unit"`
	Total              *float64 `json:"total"`
	Category           *string  `json:"category"`
	MatchedProductCode *string  `json:"matchedProductCode"`
	Description        string   `json:"description"`
	Quantity           float64  `json:"quantity"`
	UnitPrice          float64  `json:"unitPrice"`
}

// LineItemExtractor turns quote text into structured line items.
type LineItemExtractor interface {
	ExtractLineItems(ctx context.Context, text string) (*ExtractedQuote, error)
}

// contentGenerator is the slice of the genai Models service we call.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiLineItemExtractor extracts line items with a Gemini model.
type GeminiLineItemExtractor struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiLineItemExtractor creates a client for the Gemini API.
// An empty apiKey falls back to the GOOGLE_API_KEY / Vertex environment.
func NewGeminiLineItemExtractor(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiLineItemExtractor, error) {
	cfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiExtractor(client.Models, model, timeout), nil
}

func newGeminiExtractor(models contentGenerator, model string, timeout time.Duration) *GeminiLineItemExtractor {
	return &GeminiLineItemExtractor{models: models, model: model, timeout: timeout}
}

const extractionPrompt = "You extract line items from roofing and building supply quotes.\n\n" +
	"Task:\n" +
	"- Read the quote text below and list every priced line item.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object with these fields:\n" +
	"  - \"quoteNumber\": string or null\n" +
	"  - \"customerName\": string or null\n" +
	"  - \"quoteDate\": string, ISO format \"YYYY-MM-DD\", or null\n" +
	"  - \"quoteTotal\": number or null\n" +
	"  - \"lineItems\": array of objects with\n" +
	"    - \"description\": string\n" +
	"    - \"quantity\": number\n" +
	"    - \"unit\": string or null (e.g. \"m\", \"m2\", \"each\")\n" +
	"    - \"unitPrice\": number, excluding tax\n" +
	"    - \"total\": number or null\n" +
	"    - \"category\": string or null (materials, labour, flashings, guttering, other)\n" +
	"    - \"matchedProductCode\": string or null, the supplier item code if printed\n\n" +
	"Rules:\n" +
	"- Skip subtotal, tax and grand total rows.\n" +
	"- If only a line total is printed, set unitPrice to total divided by quantity.\n" +
	"- Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n\n" +
	"Quote text:\n"

// ExtractLineItems implements LineItemExtractor.
func (g *GeminiLineItemExtractor) ExtractLineItems(ctx context.Context, text string) (*ExtractedQuote, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: extractionPrompt + text}},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrAITimeout, g.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrAIUnavailable)
	}

	raw := resp.Text()
	var quote ExtractedQuote
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &quote); err != nil {
		return nil, fmt.Errorf("%w: unreadable model output: %v", ErrAIUnavailable, err)
	}
	return &quote, nil
}

// cleanModelJSON strips Markdown fences and any prose around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
