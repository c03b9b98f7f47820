// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/nerva-assistant/nerva/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports turns as an indented JSON array.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts turns to JSON. An empty history is "[]".
func (e *JSONExporter) Export(turns []storage.Turn) ([]byte, error) {
	if turns == nil {
		turns = []storage.Turn{}
	}
	out, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// =============================================================================
// YAML EXPORTER
// =============================================================================

// YAMLExporter exports turns as a YAML sequence.
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAML exporter.
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Export converts turns to YAML.
func (e *YAMLExporter) Export(turns []storage.Turn) ([]byte, error) {
	if turns == nil {
		turns = []storage.Turn{}
	}
	return yaml.Marshal(turns)
}

// FileExtension returns the file extension for YAML.
func (e *YAMLExporter) FileExtension() string {
	return ".yaml"
}
