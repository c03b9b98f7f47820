// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders persisted chat turns for the history command.
//
// # Formats
//
//   - text: one compact entry per turn, truncated to terminal width
//   - json: indented array of turns
//   - yaml: sequence of turns
//   - markdown: readable transcript
//
// # Usage
//
//	exporter, err := export.ForFormat("markdown", nil)
//	if err != nil {
//	    return err
//	}
//	out, err := exporter.Export(turns)
package export
