package exporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// JSONWriter writes indented JSON documents
type JSONWriter struct {
	dir    string
	indent string
}

// NewJSONWriter creates a JSON writer that resolves relative file names against dir and
// indents by two spaces.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir, indent: "  "}
}

// Write marshals v to filePath and returns the written path
func (w *JSONWriter) Write(filePath string, v any) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) && w.dir != "" {
		fullPath = filepath.Join(w.dir, filePath)
	}

	data, err := json.MarshalIndent(v, "", w.indent)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// Object is a JSON object that keeps its keys in insertion order
type Object struct {
	keys   []string
	values []any
}

// NewObject creates an object with room for n keys
func NewObject(n int) *Object {
	return &Object{keys: make([]string, 0, n), values: make([]any, 0, n)}
}

// Set appends a key. Keys are not deduplicated.
func (o *Object) Set(key string, value any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

// Len returns the number of keys
func (o *Object) Len() int { return len(o.keys) }

// MarshalJSON writes the keys in insertion order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
