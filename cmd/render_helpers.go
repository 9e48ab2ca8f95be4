package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jvx/internal/viewport"
	"github.com/oakwood-commons/jvx/pkg/core"
	"github.com/oakwood-commons/jvx/pkg/value"
)

const (
	indexFormatYAML = "yaml"
	indexFormatJSON = "json"
)

// indexDocument is the --print-index form of a render result.
type indexDocument struct {
	Text       string         `json:"text" yaml:"text"`
	Rows       map[int]string `json:"rows" yaml:"rows"`
	Paths      map[string]int `json:"paths" yaml:"paths"`
	Priorities map[string]int `json:"priorities" yaml:"priorities"`
	Matches    []string       `json:"matches,omitempty" yaml:"matches,omitempty"`
}

func newIndexDocument(res core.Result) indexDocument {
	doc := indexDocument{
		Text:       res.Text,
		Rows:       res.RowToPath,
		Paths:      res.PathToRow,
		Priorities: map[string]int(res.Priorities),
		Matches:    res.Matches,
	}
	if doc.Rows == nil {
		doc.Rows = map[int]string{}
	}
	if doc.Paths == nil {
		doc.Paths = map[string]int{}
	}
	if doc.Priorities == nil {
		doc.Priorities = map[string]int{}
	}
	return doc
}

func writeIndex(w io.Writer, res core.Result, format string) error {
	doc := newIndexDocument(res)
	switch format {
	case indexFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case indexFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported index format %q (use yaml or json)", format)
	}
}

// windowText returns the height rows of res that keep the focus path visible
// and carry the largest priority sum. Rows are truncated to width cells when
// width is positive.
func windowText(res core.Result, height, width int, focus string) string {
	row, _ := core.RowOf(res, value.NormalizePath(focus))
	top := viewport.Scroll(res, height, row, 0)
	return strings.Join(viewport.Lines(res.Text, top, height, width), "\n")
}

// windowFocus picks the path a window must keep visible: the focus path,
// else the current match, else the first match, else the root.
func windowFocus(res core.Result, focus, current string) string {
	switch {
	case focus != "":
		return focus
	case current != "":
		return current
	case len(res.Matches) > 0:
		return res.Matches[0]
	}
	return ""
}

// displayPath spells the root path as ".".
func displayPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}
