package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
)

// DefaultMaxTextChars bounds text payloads to what the inference context holds.
const DefaultMaxTextChars = 30000

var defaultBinaryTypes = []string{"application/pdf", "image/png", "image/jpeg", "image/webp"}

// Adapter converts an InputDocument into exactly one payload variant.
type Adapter struct {
	maxTextChars   int
	maxBinaryBytes int64
	binaryTypes    map[string]bool
	log            *zap.Logger
}

// NewAdapter creates an Adapter from ingestion config.
func NewAdapter(cfg *config.IngestionConfig, log *zap.Logger) *Adapter {
	maxText := cfg.MaxTextChars
	if maxText <= 0 {
		maxText = DefaultMaxTextChars
	}
	types := cfg.BinaryTypes
	if len(types) == 0 {
		types = defaultBinaryTypes
	}
	binary := make(map[string]bool, len(types))
	for _, t := range types {
		binary[normalizeMediaType(t)] = true
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		maxTextChars:   maxText,
		maxBinaryBytes: cfg.MaxBinaryBytes,
		binaryTypes:    binary,
		log:            log,
	}
}

// Ingest reads doc once and produces a TextPayload or BinaryPayload. On
// failure it returns a *domain.IngestionError and no payload.
func (a *Adapter) Ingest(ctx context.Context, doc domain.InputDocument) (domain.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewIngestionError(domain.IngestionUnreadable, err)
	}
	if doc.Body == nil {
		return nil, domain.NewIngestionError(domain.IngestionUnreadable, errors.New("document has no body"))
	}

	raw, err := io.ReadAll(doc.Body)
	if err != nil {
		return nil, domain.NewIngestionError(domain.IngestionUnreadable, fmt.Errorf("reading %q: %w", doc.Name, err))
	}
	if len(raw) == 0 {
		return nil, domain.NewIngestionError(domain.IngestionEmpty, fmt.Errorf("%q is empty", doc.Name))
	}

	declared := doc.MediaType
	mediaType := normalizeMediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = normalizeMediaType(mimetype.Detect(raw).String())
		declared = mediaType
		a.log.Debug("ingest.Adapter: sniffed media type",
			zap.String("document", doc.Name), zap.String("media_type", mediaType))
	}

	if a.binaryTypes[mediaType] {
		if a.maxBinaryBytes > 0 && int64(len(raw)) > a.maxBinaryBytes {
			return nil, domain.NewIngestionError(domain.IngestionTooLarge,
				fmt.Errorf("%d bytes exceeds binary limit of %d", len(raw), a.maxBinaryBytes))
		}
		a.log.Info("ingest.Adapter: built binary payload",
			zap.String("document", doc.Name), zap.String("mime_type", declared), zap.Int("bytes", len(raw)))
		return domain.BinaryPayload{
			Data:     base64.StdEncoding.EncodeToString(raw),
			MimeType: declared,
		}, nil
	}

	if !isTextual(mediaType) {
		return nil, domain.NewIngestionError(domain.IngestionUnsupportedMedia,
			fmt.Errorf("%q has media type %s", doc.Name, mediaType))
	}

	var text string
	if mediaType == domain.MediaTypeXLSX {
		text, err = spreadsheetToText(raw)
	} else {
		text, err = decodeText(raw)
	}
	if err != nil {
		return nil, domain.NewIngestionError(domain.IngestionUndecodable, fmt.Errorf("decoding %q: %w", doc.Name, err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewIngestionError(domain.IngestionEmpty, fmt.Errorf("%q has no text content", doc.Name))
	}

	content, truncated, length := truncateRunes(text, a.maxTextChars)
	if truncated {
		a.log.Info("ingest.Adapter: truncated text payload",
			zap.String("document", doc.Name), zap.Int("original_chars", length), zap.Int("max_chars", a.maxTextChars))
	}
	return domain.TextPayload{
		Content:        content,
		Truncated:      truncated,
		OriginalLength: length,
	}, nil
}

// truncateRunes cuts s to at most max code points, reporting whether it cut
// and the original length.
func truncateRunes(s string, max int) (string, bool, int) {
	n := utf8.RuneCountInString(s)
	if n <= max {
		return s, false, n
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i], true, n
		}
		count++
	}
	return s, false, n
}

// isTextual reports whether a non-binary media type can be read as text.
// Media families that are never text, and unrecognised binary content, are
// rejected.
func isTextual(mediaType string) bool {
	if mediaType == "application/octet-stream" {
		return false
	}
	for _, prefix := range []string{"image/", "audio/", "video/", "font/"} {
		if strings.HasPrefix(mediaType, prefix) {
			return false
		}
	}
	return true
}

func normalizeMediaType(mt string) string {
	mt = strings.TrimSpace(mt)
	if mt == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return strings.ToLower(mt)
	}
	return parsed
}
