package services

import "context"

// Recognized media types for ingestion.
const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
	MediaTypeDoc  = "application/msword"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
)

// TextExtractor converts raw uploaded bytes of a known media type into
// plain text. For image media the "text" is a generated natural-language
// description of the visible content. Returns ErrUnsupportedMedia for any
// other declared type; extraction failures propagate to the caller.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
}
