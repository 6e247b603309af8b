package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/javamodel/model"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// modelWriter prints models one after another: indented JSON objects, or
// a YAML stream with one document per model.
type modelWriter struct {
	format string
	json   *json.Encoder
	yaml   *yaml.Encoder
}

func newModelWriter(w io.Writer, format string) (*modelWriter, error) {
	mw := &modelWriter{format: format}
	switch format {
	case formatJSON:
		mw.json = json.NewEncoder(w)
		mw.json.SetEscapeHTML(false)
		mw.json.SetIndent("", "  ")
	case formatYAML:
		mw.yaml = yaml.NewEncoder(w)
		mw.yaml.SetIndent(2)
	default:
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatYAML)
	}
	return mw, nil
}

func (mw *modelWriter) Write(m *model.Map) error {
	if mw.yaml != nil {
		return mw.yaml.Encode(m)
	}
	return mw.json.Encode(m)
}

func (mw *modelWriter) Close() error {
	if mw.yaml != nil {
		return mw.yaml.Close()
	}
	return nil
}
