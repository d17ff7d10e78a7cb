// Package chat implements the interactive analytics session: routing free
// text to tool calls, printing text blocks, saving rendered charts to disk,
// and keeping a bounded JSON history of past queries.
package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// Most recent entries kept on disk.
const historyLimit = 100

// Entry records one routed query.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	Tool      string    `json:"tool"`
	Rule      string    `json:"rule"`
	Status    string    `json:"status"`
}

// History is a bounded, file-backed log of chat entries. Not safe for
// concurrent use; the chat session is single-threaded.
type History struct {
	path    string
	entries []Entry
}

// NewHistory loads existing entries from path, or starts empty when the
// file does not exist yet.
func NewHistory(path string) (*History, error) {
	h := &History{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to read chat history")
	}
	if err := json.Unmarshal(data, &h.entries); err != nil {
		// A corrupt history file should not block the session.
		h.entries = nil
	}
	return h, nil
}

// Add appends a new entry, assigns its ID, and trims to the limit.
func (h *History) Add(input, tool, rule, status string) Entry {
	e := Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Input:     input,
		Tool:      tool,
		Rule:      rule,
		Status:    status,
	}
	h.entries = append(h.entries, e)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
	return e
}

// Entries returns the recorded entries, oldest first.
func (h *History) Entries() []Entry {
	return h.entries
}

// Save writes the history file, creating parent directories as needed.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return errortypes.InternalError(err, "failed to create history directory")
	}
	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return errortypes.InternalError(err, "failed to encode chat history")
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return errortypes.InternalError(err, "failed to write chat history")
	}
	return nil
}

// Format renders the last n entries for display.
func (h *History) Format(n int) string {
	entries := h.entries
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	if len(entries) == 0 {
		return "No queries yet.\n"
	}
	out := fmt.Sprintf("Last %d queries:\n", len(entries))
	for _, e := range entries {
		out += fmt.Sprintf("  [%s] %-24s %-8s %q\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Tool, e.Status, e.Input)
	}
	return out
}
