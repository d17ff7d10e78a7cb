package tools

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

func TestResultOK(t *testing.T) {
	var r Result
	r.OK()
	r.AddText("hello")

	if r.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", r.Status)
	}
	if len(r.Content) != 1 || r.Content[0].Kind != BlockKindText || r.Content[0].Value != "hello" {
		t.Errorf("Unexpected content: %+v", r.Content)
	}
}

func TestResultFail(t *testing.T) {
	var r Result
	r.Fail(errortypes.ValidationError(errors.New("bad field"), "invalid request"))

	if r.Status != "error" {
		t.Errorf("Expected status 'error', got '%s'", r.Status)
	}
	if r.ErrorKind != "validation" {
		t.Errorf("Expected error kind 'validation', got '%s'", r.ErrorKind)
	}
	if r.Error == "" {
		t.Error("Expected non-empty error message")
	}
	if len(r.Content) != 1 || r.Content[0].Kind != BlockKindText {
		t.Fatalf("Expected a single text block, got %+v", r.Content)
	}
	if !strings.HasPrefix(r.Content[0].Value, "validation error:") {
		t.Errorf("Error block should start with the kind tag, got %q", r.Content[0].Value)
	}
}

func TestResultFailPlainError(t *testing.T) {
	var r Result
	r.Fail(errors.New("something broke"))

	// Non-taxonomy errors fall back to internal.
	if r.ErrorKind != "internal" {
		t.Errorf("Expected error kind 'internal', got '%s'", r.ErrorKind)
	}
}

func TestImageBlockEncoding(t *testing.T) {
	raw := []byte{1, 2, 3, 4}

	var r Result
	r.OK()
	r.AddImage("image/png", raw)

	block := r.Content[0]
	if block.Kind != BlockKindImage || block.MimeType != "image/png" {
		t.Errorf("Unexpected image block: %+v", block)
	}
	decoded, err := base64.StdEncoding.DecodeString(block.Data)
	if err != nil {
		t.Fatalf("Image data is not valid base64: %v", err)
	}
	if len(decoded) != len(raw) || decoded[0] != 1 || decoded[3] != 4 {
		t.Errorf("Decoded bytes don't match: %v", decoded)
	}
}

func TestEnvelope(t *testing.T) {
	resp := &QueryDatabaseResponse{}
	resp.OK()

	var e Enveloped = resp
	if e.Envelope().Status != "success" {
		t.Error("Envelope should expose the embedded result")
	}
}
