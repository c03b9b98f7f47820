// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"warning", RenderWarning, StatusIndicators.Warning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("message")
			if !strings.Contains(out, tt.indicator) {
				t.Errorf("%s output %q missing indicator %q", tt.name, out, tt.indicator)
			}
			if !strings.Contains(out, "message") {
				t.Errorf("%s output %q missing message", tt.name, out)
			}
		})
	}
}

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}

	if got := theme.Title.Render("NERVA"); !strings.Contains(got, "NERVA") {
		t.Errorf("Title.Render lost text: %q", got)
	}
	if got := theme.Shortcut("q", "quit"); !strings.Contains(got, "q") || !strings.Contains(got, "quit") {
		t.Errorf("Shortcut = %q", got)
	}
}
