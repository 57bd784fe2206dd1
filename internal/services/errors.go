package services

import (
	"errors"
	"fmt"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/pdfimport"
)

// Service-level errors. Handlers map these onto HTTP statuses.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("AI service unavailable")
	ErrAITimeout       = fmt.Errorf("%w: AI service timed out", ErrExternalService)
	// ErrParse is returned when no text could be read from a PDF.
	ErrParse = pdfimport.ErrUnreadable
)
