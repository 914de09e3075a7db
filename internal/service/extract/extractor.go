// Package extract converts uploaded bytes into plain text by media type.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"

	"docqa/internal/domain"
	"docqa/internal/domain/services"
)

// Extractor dispatches extraction by declared media type: plain text passes
// through, PDF and word-processor formats go through structural text
// extraction, and images are described by a vision-capable model.
type Extractor struct {
	vision services.Generator
	logger *slog.Logger
}

// NewExtractor creates a new Extractor. The vision generator is only
// invoked for image media types.
func NewExtractor(vision services.Generator, logger *slog.Logger) services.TextExtractor {
	return &Extractor{
		vision: vision,
		logger: logger,
	}
}

// Extract produces the document's plain text. It has no side effects
// beyond the external vision call; failures propagate to the caller so no
// partial document is ever persisted.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	switch mediaType {
	case services.MediaTypeText:
		return string(data), nil

	case services.MediaTypePDF, services.MediaTypeDoc, services.MediaTypeDocx:
		return e.extractStructured(data)

	case services.MediaTypePNG, services.MediaTypeJPEG:
		return e.describeImage(ctx, data, mediaType)

	default:
		return "", &domain.UnsupportedMediaError{MediaType: mediaType}
	}
}

// extractStructured pulls page text out of PDF and word-processor files.
// MuPDF sniffs the container format from the bytes, so one path covers
// pdf, doc, and docx. Page texts are concatenated with newline separators.
func (e *Extractor) extractStructured(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open document: %w: %v", domain.ErrExternalService, err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w: %v", i, domain.ErrExternalService, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

// describeImage turns an image into a textual description of its visible
// text, diagrams, and tables; that description becomes the document's
// extracted text.
func (e *Extractor) describeImage(ctx context.Context, data []byte, mediaType string) (string, error) {
	description, err := e.vision.DescribeImage(ctx, data, mediaType)
	if err != nil {
		return "", err
	}

	e.logger.Debug("image described",
		"media_type", mediaType,
		"description_len", len(description),
	)

	return description, nil
}
