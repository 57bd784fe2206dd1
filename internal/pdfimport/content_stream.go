package pdfimport

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ContentStreamExtractor reads text operands straight out of each page's
// content stream using pdfcpu. It recovers text from documents whose font
// tables the plain-text reader cannot decode.
type ContentStreamExtractor struct{}

// Name implements TextExtractor.
func (ContentStreamExtractor) Name() string { return "content-stream" }

// ExtractText implements TextExtractor.
func (ContentStreamExtractor) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return "", fmt.Errorf("validate: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return "", fmt.Errorf("page count: %w", err)
	}

	var out strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		out.WriteString(textFromContent(content))
		out.WriteString("\n")
	}
	return out.String(), nil
}

// wordGap is the TJ offset, in thousandths of an em, treated as a space.
const wordGap = 200

// textFromContent collects the literal string operands of a content stream.
// Line-moving operators (Td, TD, T*, ', ", ET) start a new line.
func textFromContent(content []byte) string {
	var out strings.Builder
	var line strings.Builder
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteString("\n")
		}
		line.Reset()
	}

	inArray := false
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '(':
			s, next := readLiteral(content, i+1)
			line.WriteString(s)
			i = next
		case c == '[':
			inArray = true
		case c == ']':
			inArray = false
		case inArray && (c == '-' || (c >= '0' && c <= '9')):
			// A wide kerning offset inside a TJ array is a word gap.
			j := i + 1
			for j < len(content) && ((content[j] >= '0' && content[j] <= '9') || content[j] == '.') {
				j++
			}
			if n, err := strconv.ParseFloat(string(content[i:j]), 64); err == nil && math.Abs(n) >= wordGap {
				line.WriteString(" ")
			}
			i = j - 1
		case c == '\'' || c == '"':
			flush()
		case c == 'T' && i+1 < len(content) && (content[i+1] == 'd' || content[i+1] == 'D' || content[i+1] == '*'):
			flush()
			i++
		case c == 'E' && i+1 < len(content) && content[i+1] == 'T':
			flush()
			i++
		}
	}
	flush()
	return out.String()
}

// readLiteral reads a PDF literal string starting just after its opening
// parenthesis and returns the decoded text and the index of the closing one.
func readLiteral(content []byte, start int) (string, int) {
	var b strings.Builder
	depth := 1
	for i := start; i < len(content); i++ {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= len(content) {
				return b.String(), i
			}
			i++
			switch esc := content[i]; esc {
			case 'n':
				b.WriteByte('\n')
			case 'r', 't', 'b', 'f':
				b.WriteByte(' ')
			case '(', ')', '\\':
				b.WriteByte(esc)
			default:
				if esc >= '0' && esc <= '7' {
					v := int(esc - '0')
					for n := 0; n < 2 && i+1 < len(content) && content[i+1] >= '0' && content[i+1] <= '7'; n++ {
						i++
						v = v*8 + int(content[i]-'0')
					}
					b.WriteByte(byte(v))
				}
			}
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), len(content)
}
