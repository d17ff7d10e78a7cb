package chat

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// fakePNG is a tiny stand-in payload for image blocks.
var fakePNG = []byte{0x89, 'P', 'N', 'G', 0}

// MockCaller implements ToolCaller for testing
type MockCaller struct {
	CalledTools []string
	CalledArgs  []map[string]interface{}
	Result      *tools.Result
	ReturnError bool
}

func (m *MockCaller) Invoke(tool string, args map[string]interface{}) (*tools.Result, error) {
	if m.ReturnError {
		return nil, errortypes.InternalError(errors.New("test error"), "invoke failed")
	}
	m.CalledTools = append(m.CalledTools, tool)
	m.CalledArgs = append(m.CalledArgs, args)
	if m.Result != nil {
		return m.Result, nil
	}
	res := &tools.Result{}
	res.OK()
	res.AddText("mock output")
	return res, nil
}

func newTestSession(t *testing.T, caller ToolCaller, input string) (*Session, *bytes.Buffer, *config.Config) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Chart.OutputDir = t.TempDir()

	history, err := NewHistory(filepath.Join(cfg.Chart.OutputDir, "history.json"))
	if err != nil {
		t.Fatalf("NewHistory returned error: %v", err)
	}

	var out bytes.Buffer
	return NewSession(caller, cfg, history, strings.NewReader(input), &out), &out, cfg
}

func TestSessionRoutesAndPrints(t *testing.T) {
	caller := &MockCaller{}
	session, out, _ := newTestSession(t, caller, "conversion funnel\nquit\n")

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(caller.CalledTools) != 1 || caller.CalledTools[0] != tools.ToolConversionFunnel {
		t.Errorf("Expected conversion_funnel call, got %v", caller.CalledTools)
	}
	if !strings.Contains(out.String(), "mock output") {
		t.Errorf("Text block not printed: %s", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye") {
		t.Error("Expected quit farewell")
	}
}

func TestSessionSavesImageBlocks(t *testing.T) {
	res := &tools.Result{}
	res.OK()
	res.AddText("chart rendered")
	res.AddImage("image/png", fakePNG)

	caller := &MockCaller{Result: res}
	session, out, cfg := newTestSession(t, caller, "chart of sessions\nquit\n")

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(out.String(), "Chart saved to") {
		t.Errorf("Expected chart save notice, got: %s", out.String())
	}

	entries, err := os.ReadDir(cfg.Chart.OutputDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "chart_") && strings.HasSuffix(e.Name(), ".png") {
			found = true
			data, err := os.ReadFile(filepath.Join(cfg.Chart.OutputDir, e.Name()))
			if err != nil {
				t.Fatalf("Failed to read saved chart: %v", err)
			}
			if !bytes.Equal(data, fakePNG) {
				t.Error("Saved chart bytes do not match the image block")
			}
		}
	}
	if !found {
		t.Error("Expected a saved chart file in the output dir")
	}
}

func TestSessionCommands(t *testing.T) {
	caller := &MockCaller{}
	session, out, _ := newTestSession(t, caller, "help\nhistory\nexit\n")

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(caller.CalledTools) != 0 {
		t.Errorf("Commands must not invoke tools, got %v", caller.CalledTools)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Error("Expected help text")
	}
	if !strings.Contains(out.String(), "No queries yet") {
		t.Error("Expected empty history listing")
	}
}

func TestSessionRecordsHistory(t *testing.T) {
	caller := &MockCaller{}
	session, _, cfg := newTestSession(t, caller, "top products\nquit\n")

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// quit saves the history file; reload it.
	history, err := NewHistory(filepath.Join(cfg.Chart.OutputDir, "history.json"))
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	entries := history.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Tool != tools.ToolProductPerformance || entries[0].Status != "success" {
		t.Errorf("Unexpected history entry: %+v", entries[0])
	}
}

func TestSessionReportsInvokeErrors(t *testing.T) {
	caller := &MockCaller{ReturnError: true}
	session, out, _ := newTestSession(t, caller, "top products\nquit\n")

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Errorf("Expected error output, got: %s", out.String())
	}
}
