package lsp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

func TestParseSettings(t *testing.T) {
	base := pipeline.Config{CheckOnChange: true, PreciseLocations: true, Timeout: time.Second}

	tests := []struct {
		name     string
		raw      string
		expected pipeline.Config
		wantErr  bool
	}{
		{
			name:     "nested section",
			raw:      `{"swaggitor": {"checkOnChange": true}}`,
			expected: pipeline.Config{CheckOnChange: true, Timeout: time.Second},
		},
		{
			name:     "flat settings",
			raw:      `{"checkOnChange": true, "preciseLocations": true}`,
			expected: pipeline.Config{CheckOnChange: true, PreciseLocations: true, Timeout: time.Second},
		},
		{
			name:     "missing keys fall back to defaults",
			raw:      `{"swaggitor": {}}`,
			expected: pipeline.Config{Timeout: time.Second},
		},
		{
			name:     "null settings",
			raw:      `null`,
			expected: pipeline.Config{Timeout: time.Second},
		},
		{
			name:     "other sections only",
			raw:      `{"editor": {"tabSize": 2}}`,
			expected: pipeline.Config{Timeout: time.Second},
		},
		{
			name:    "wrong type keeps the previous configuration",
			raw:     `{"swaggitor": {"checkOnChange": "yes"}}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			raw:     `[true]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSettings(json.RawMessage(tt.raw), base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				if got != base {
					t.Errorf("expected the previous configuration on error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}
