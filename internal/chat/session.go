package chat

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/router"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// ToolCaller invokes a tool by name. The analytics server satisfies this
// for in-process use.
type ToolCaller interface {
	Invoke(tool string, args map[string]interface{}) (*tools.Result, error)
}

// Session runs the interactive chat loop against a tool caller.
type Session struct {
	router  *router.Router
	caller  ToolCaller
	cfg     *config.Config
	history *History
	in      *bufio.Scanner
	out     io.Writer
}

// NewSession wires a session over the given input/output streams.
func NewSession(caller ToolCaller, cfg *config.Config, history *History, in io.Reader, out io.Writer) *Session {
	return &Session{
		router:  router.New(),
		caller:  caller,
		cfg:     cfg,
		history: history,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

const helpText = `E-commerce Analytics Chat

Ask in plain words or paste SQL. Examples:
  show me the top countries
  user segmentation
  conversion funnel
  chart of product views
  heatmap of clicks by country and category
  daily activity trend
  schema of user_sessions
  sample clickstream
  SELECT country, COUNT(*) FROM clickstream GROUP BY country

Commands:
  help      show this message
  history   show recent queries
  quit      exit (also: exit)
`

// Run reads input lines until EOF or quit. History is saved on the way out.
func (s *Session) Run() error {
	fmt.Fprintln(s.out, "E-commerce Analytics Chat. Type 'help' for examples, 'quit' to exit.")

	for {
		fmt.Fprint(s.out, "\n> ")
		if !s.in.Scan() {
			break
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Fprintln(s.out, "Goodbye.")
			return s.history.Save()
		case "help":
			fmt.Fprint(s.out, helpText)
			continue
		case "history":
			fmt.Fprint(s.out, s.history.Format(20))
			continue
		}

		s.handle(line)
	}

	if err := s.in.Err(); err != nil {
		return errortypes.InternalError(err, "failed to read chat input")
	}
	return s.history.Save()
}

// handle routes one line, invokes the tool, and renders the response.
func (s *Session) handle(line string) {
	dec := s.router.Route(line)
	slog.Debug("Routed chat input", "tool", dec.Tool, "rule", dec.Rule)

	res, err := s.caller.Invoke(dec.Tool, dec.Args)
	if err != nil {
		errortypes.LogError(nil, err)
		fmt.Fprintf(s.out, "Error: %v\n", err)
		s.history.Add(line, dec.Tool, dec.Rule, "error")
		return
	}

	s.render(res)
	s.history.Add(line, dec.Tool, dec.Rule, res.Status)
}

// render prints the text blocks and writes image blocks to the chart
// output directory.
func (s *Session) render(res *tools.Result) {
	for _, block := range res.Content {
		switch block.Kind {
		case tools.BlockKindText:
			fmt.Fprintln(s.out, block.Value)
		case tools.BlockKindImage:
			path, err := s.saveImage(block)
			if err != nil {
				errortypes.LogError(nil, err)
				fmt.Fprintf(s.out, "Failed to save chart: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "Chart saved to %s\n", path)
		}
	}
}

// saveImage decodes one image block into the output directory.
func (s *Session) saveImage(block tools.Block) (string, error) {
	data, err := base64.StdEncoding.DecodeString(block.Data)
	if err != nil {
		return "", errortypes.InternalError(err, "image block is not valid base64")
	}

	dir := s.cfg.Chart.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errortypes.InternalError(err, "failed to create chart output directory")
	}

	ext := "png"
	if block.MimeType == "image/jpeg" {
		ext = "jpg"
	}
	path := filepath.Join(dir, fmt.Sprintf("chart_%s.%s", time.Now().Format("20060102_150405.000"), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errortypes.InternalError(err, "failed to write chart file")
	}
	return path, nil
}
