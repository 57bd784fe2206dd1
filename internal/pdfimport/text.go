// Package pdfimport turns supplier or historical quote PDFs into pricing
// observations: text extraction, AI line-item extraction and catalog matching.
package pdfimport

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MinTextLength is the least amount of text a parser must produce for its
// result to be used.
const MinTextLength = 20

var (
	// ErrInvalidPDF is returned when the payload is not decodable PDF bytes.
	ErrInvalidPDF = errors.New("invalid PDF payload")
	// ErrUnreadable is returned when no parser produced enough text.
	ErrUnreadable = errors.New("unparseable PDF")
)

// TextExtractor pulls plain text from PDF bytes.
type TextExtractor interface {
	Name() string
	ExtractText(data []byte) (string, error)
}

// ExtractText tries each extractor in order and returns the first result
// with at least MinTextLength characters. When all fail, the error lists
// every parser's failure.
func ExtractText(data []byte, extractors ...TextExtractor) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrInvalidPDF)
	}

	failures := make([]string, 0, len(extractors))
	for _, ex := range extractors {
		text, err := ex.ExtractText(data)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", ex.Name(), err))
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) < MinTextLength {
			failures = append(failures, fmt.Sprintf("%s: only %d characters of text", ex.Name(), len(text)))
			continue
		}
		return text, nil
	}

	if len(failures) == 0 {
		return "", fmt.Errorf("%w: no text extractors configured", ErrUnreadable)
	}
	return "", fmt.Errorf("%w: %s", ErrUnreadable, strings.Join(failures, "; "))
}

// DecodeBase64 decodes a base64 PDF payload, tolerating a data URL prefix.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidPDF)
	}
	return data, nil
}

// PlainTextExtractor reads text with ledongthuc/pdf.
type PlainTextExtractor struct{}

// Name implements TextExtractor.
func (PlainTextExtractor) Name() string { return "plain-text" }

// ExtractText implements TextExtractor.
func (PlainTextExtractor) ExtractText(data []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
