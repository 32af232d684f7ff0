package domain

import "encoding/base64"

// Payload is the normalized request content. Exactly one of TextPayload or
// BinaryPayload is produced per request.
type Payload interface {
	Kind() PayloadKind
	isPayload()
}

// TextPayload carries decoded document text, already truncated.
type TextPayload struct {
	Content        string
	Truncated      bool
	OriginalLength int
}

// Kind implements Payload.
func (TextPayload) Kind() PayloadKind { return PayloadText }
func (TextPayload) isPayload()        {}

// BinaryPayload carries a base64-encoded document attachment.
type BinaryPayload struct {
	Data     string
	MimeType string
}

// Kind implements Payload.
func (BinaryPayload) Kind() PayloadKind { return PayloadBinary }
func (BinaryPayload) isPayload()        {}

// Bytes decodes Data back to the raw attachment.
func (p BinaryPayload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}
