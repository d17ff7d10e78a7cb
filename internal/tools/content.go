package tools

import (
	"encoding/base64"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// Block kinds
const (
	BlockKindText  = "text"
	BlockKindImage = "image"
)

// Block is one element of a tool response: either text or an encoded image.
// Callers must accept zero, one, or many blocks per response.
type Block struct {
	// Kind is "text" or "image".
	Kind string `json:"kind"`

	// Value holds the text for text blocks.
	Value string `json:"value,omitempty"`

	// MimeType holds the media type for image blocks (e.g. "image/png").
	MimeType string `json:"mime_type,omitempty"`

	// Data holds base64-encoded image bytes for image blocks.
	Data string `json:"data,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(value string) Block {
	return Block{Kind: BlockKindText, Value: value}
}

// ImageBlock builds an image content block from raw image bytes.
func ImageBlock(mimeType string, data []byte) Block {
	return Block{
		Kind:     BlockKindImage,
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// Result is the shared envelope embedded in every tool response.
type Result struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ErrorKind tags the error taxonomy kind when Status is "error"
	// ("validation", "not_found", "query", "timeout", "internal")
	ErrorKind string `json:"error_kind,omitempty"`

	// Error contains a human-readable message if Status is "error"
	Error string `json:"error,omitempty"`

	// Content holds the ordered content blocks of the response
	Content []Block `json:"content,omitempty"`
}

// Envelope returns the embedded result. Response types embedding Result
// satisfy Enveloped through method promotion.
func (r *Result) Envelope() *Result {
	return r
}

// Enveloped is implemented by every tool response type.
type Enveloped interface {
	Envelope() *Result
}

// OK marks the result successful.
func (r *Result) OK() {
	r.Status = "success"
}

// Fail converts err into the structured error form: status, kind tag,
// message, and a single text block so transport-level callers always
// receive content rather than an unhandled fault.
func (r *Result) Fail(err error) {
	kind := errortypes.TypeOf(err)
	r.Status = "error"
	r.ErrorKind = string(kind)
	r.Error = err.Error()
	r.Content = []Block{TextBlock(string(kind) + " error: " + err.Error())}
}

// AddText appends a text block.
func (r *Result) AddText(value string) {
	r.Content = append(r.Content, TextBlock(value))
}

// AddImage appends an image block.
func (r *Result) AddImage(mimeType string, data []byte) {
	r.Content = append(r.Content, ImageBlock(mimeType, data))
}
