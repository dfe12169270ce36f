// Package output renders loaded variables for the command line tool.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/dshills/vimvar/value"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	JSON   Format = "json"
	Pretty Format = "pretty"
	YAML   Format = "yaml"
	Text   Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, Pretty, YAML, Text:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Result is one loaded variable.
type Result struct {
	// Name is the scoped variable name, such as "g:mapleader".
	Name string
	// Value is the decoded value. It is null when Set is false.
	Value value.Value
	// Set reports whether the variable exists.
	Set bool
}

// Renderer encodes results in one format.
type Renderer struct {
	format Format
	color  bool
}

// NewRenderer creates a renderer. Color only affects the pretty format.
func NewRenderer(format Format, color bool) *Renderer {
	return &Renderer{format: format, color: color}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Render encodes a single result. An unset variable renders as null, or as
// an empty line in the text format.
func (r *Renderer) Render(res Result) ([]byte, error) {
	switch r.format {
	case Text:
		if !res.Set {
			return []byte("\n"), nil
		}
		return r.text(res.Value)
	case YAML:
		return encodeYAML(valueNode(res.Value))
	default:
		raw, err := res.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return r.json(raw), nil
	}
}

// RenderAll encodes several results as one document keyed by name. Keys
// keep the order of results.
func (r *Renderer) RenderAll(results []Result) ([]byte, error) {
	switch r.format {
	case Text:
		var buf bytes.Buffer
		for _, res := range results {
			line := []byte("\n")
			if res.Set {
				var err error
				if line, err = r.text(res.Value); err != nil {
					return nil, err
				}
			}
			buf.WriteString(res.Name)
			buf.WriteByte('=')
			buf.Write(line)
		}
		return buf.Bytes(), nil
	case YAML:
		doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, res := range results {
			doc.Content = append(doc.Content, stringNode(res.Name), valueNode(res.Value))
		}
		return encodeYAML(doc)
	default:
		doc := []byte("{}")
		for _, res := range results {
			raw, err := res.Value.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", res.Name, err)
			}
			if doc, err = sjson.SetRawBytes(doc, EscapeKey(res.Name), raw); err != nil {
				return nil, fmt.Errorf("%s: %w", res.Name, err)
			}
		}
		return r.json(doc), nil
	}
}

func (r *Renderer) json(raw []byte) []byte {
	if r.format != Pretty {
		return append(raw, '\n')
	}
	out := pretty.Pretty(raw)
	if r.color {
		out = pretty.Color(out, nil)
	}
	return out
}

// text prints strings as they are and everything else as JSON.
func (r *Renderer) text(v value.Value) ([]byte, error) {
	if s, ok := v.AsString(); ok {
		return []byte(s + "\n"), nil
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

// EscapeKey escapes the path syntax characters in a literal object key so
// sjson treats it as a single key.
func EscapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '.', '\\', '|', '#', '@', '*', '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
