package pdfimport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	reply string
	err   error
	block bool
	model string
	text  string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGeminiExtractor_ParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + `{
  "quoteNumber": "Q-2041",
  "customerName": "J Smith",
  "quoteDate": "2025-02-10",
  "quoteTotal": 1480.5,
  "lineItems": [
    {"description": "Ridge capping", "quantity": 12, "unit": "m", "unitPrice": 18.5, "total": 222, "category": "flashings", "matchedProductCode": "RC-01"},
    {"description": "Labour", "quantity": 8, "unit": "hr", "unitPrice": 85, "total": 680, "category": "labour", "matchedProductCode": null}
  ]
}` + "\n```"}
	ex := newGeminiExtractor(gen, "gemini-2.5-flash", time.Second)

	quote, err := ex.ExtractLineItems(context.Background(), "QUOTE Q-2041 ...")

	require.NoError(t, err)
	require.NotNil(t, quote.QuoteNumber)
	assert.Equal(t, "Q-2041", *quote.QuoteNumber)
	require.Len(t, quote.LineItems, 2)
	assert.Equal(t, 18.5, quote.LineItems[0].UnitPrice)
	require.NotNil(t, quote.LineItems[0].MatchedProductCode)
	assert.Equal(t, "RC-01", *quote.LineItems[0].MatchedProductCode)
	assert.Nil(t, quote.LineItems[1].MatchedProductCode)
	assert.Equal(t, "gemini-2.5-flash", gen.model)
	assert.Contains(t, gen.text, "QUOTE Q-2041")
}

func TestGeminiExtractor_Timeout(t *testing.T) {
	ex := newGeminiExtractor(&fakeGenerator{block: true}, "m", 10*time.Millisecond)

	_, err := ex.ExtractLineItems(context.Background(), "text")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAITimeout)
	assert.NotErrorIs(t, err, ErrAIUnavailable)
}

func TestGeminiExtractor_ServiceError(t *testing.T) {
	ex := newGeminiExtractor(&fakeGenerator{err: errors.New("503 overloaded")}, "m", time.Second)

	_, err := ex.ExtractLineItems(context.Background(), "text")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIUnavailable)
	assert.Contains(t, err.Error(), "503 overloaded")
}

func TestGeminiExtractor_GarbageReply(t *testing.T) {
	ex := newGeminiExtractor(&fakeGenerator{reply: "Sorry, I cannot help with that."}, "m", time.Second)

	_, err := ex.ExtractLineItems(context.Background(), "text")

	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}
