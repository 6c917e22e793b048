package diagnostics

import (
	"encoding/json"
	"testing"
)

func TestToDiagnostics(t *testing.T) {
	placeholder := Range{Start: Position{Line: 0, Character: 1}, End: Position{Line: 0, Character: 1}}

	tests := []struct {
		name     string
		failure  Failure
		messages []string
		ranges   []Range
	}{
		{
			name:     "valid clears diagnostics",
			failure:  Valid{},
			messages: []string{},
		},
		{
			name:     "nil is treated as valid",
			failure:  nil,
			messages: []string{},
		},
		{
			name:     "syntax failure without hint",
			failure:  SyntaxFailure{Message: "unexpected end of JSON input"},
			messages: []string{"unexpected end of JSON input"},
			ranges:   []Range{placeholder},
		},
		{
			name:     "syntax failure with full hint",
			failure:  SyntaxFailure{Message: "bad indent", Hint: &Hint{Line: 3, Character: 7, HasCharacter: true}},
			messages: []string{"bad indent"},
			ranges:   []Range{{Start: Position{Line: 3, Character: 7}, End: Position{Line: 3, Character: 7}}},
		},
		{
			name:     "syntax failure with line only hint keeps placeholder column",
			failure:  &SyntaxFailure{Message: "bad indent", Hint: &Hint{Line: 2}},
			messages: []string{"bad indent"},
			ranges:   []Range{{Start: Position{Line: 2, Character: 1}, End: Position{Line: 2, Character: 1}}},
		},
		{
			name: "violations keep source order",
			failure: ViolationList{
				Message: "Swagger schema validation failed",
				Violations: []Violation{
					{Message: "second"},
					{Message: "first"},
					{Message: "third"},
				},
			},
			messages: []string{"second", "first", "third"},
			ranges:   []Range{placeholder, placeholder, placeholder},
		},
		{
			name:     "empty violation list uses top level message",
			failure:  ViolationList{Message: "Token \"Pet\" does not exist"},
			messages: []string{"Token \"Pet\" does not exist"},
			ranges:   []Range{placeholder},
		},
		{
			name:     "empty violation list falls back to reason",
			failure:  ViolationList{Reason: "resolver failed"},
			messages: []string{"resolver failed"},
			ranges:   []Range{placeholder},
		},
		{
			name:     "generic failure without message",
			failure:  GenericFailure{},
			messages: []string{GenericMessage},
			ranges:   []Range{placeholder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDiagnostics(tt.failure)
			if got == nil {
				t.Fatal("expected a non-nil slice")
			}
			if len(got) != len(tt.messages) {
				t.Fatalf("expected %d diagnostics, got %d: %+v", len(tt.messages), len(got), got)
			}
			for i, d := range got {
				if d.Message != tt.messages[i] {
					t.Errorf("diagnostic %d: expected message %q, got %q", i, tt.messages[i], d.Message)
				}
				if d.Range != tt.ranges[i] {
					t.Errorf("diagnostic %d: expected range %+v, got %+v", i, tt.ranges[i], d.Range)
				}
				if d.Severity != SeverityWarning {
					t.Errorf("diagnostic %d: expected warning severity, got %v", i, d.Severity)
				}
				if d.Code != 0 {
					t.Errorf("diagnostic %d: expected code 0, got %d", i, d.Code)
				}
				if d.Source != "Swaggitor" {
					t.Errorf("diagnostic %d: expected source Swaggitor, got %q", i, d.Source)
				}
			}
		})
	}
}

func TestDiagnosticWireShape(t *testing.T) {
	diags := ToDiagnostics(ViolationList{Violations: []Violation{{Message: "swagger must be string '2.0'"}}})
	data, err := json.Marshal(diags[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `{"severity":2,"code":0,"message":"swagger must be string '2.0'","range":{"start":{"line":0,"character":1},"end":{"line":0,"character":1}},"source":"Swaggitor"}`
	if string(data) != expected {
		t.Errorf("unexpected wire shape:\n got: %s\nwant: %s", data, expected)
	}

	empty, err := json.Marshal(ToDiagnostics(Valid{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("expected valid outcome to marshal as [], got %s", empty)
	}
}

func TestReport(t *testing.T) {
	if Report(Valid{}) != nil {
		t.Error("expected nil report for a valid outcome")
	}

	report := Report(ViolationList{
		Message: "Swagger schema validation failed",
		Violations: []Violation{
			{Message: "/info: missing property 'title'", Path: "/info"},
		},
	})
	if report == nil {
		t.Fatal("expected a report")
	}
	if report.Message != "Swagger schema validation failed" {
		t.Errorf("unexpected message %q", report.Message)
	}
	if len(report.Details) != 1 || report.Details[0].Path != "/info" {
		t.Errorf("unexpected details %+v", report.Details)
	}

	syntax := Report(SyntaxFailure{Message: "yaml: line 2: mapping values are not allowed in this context"})
	if syntax == nil || syntax.Message == "" || len(syntax.Details) != 0 {
		t.Errorf("unexpected syntax report %+v", syntax)
	}
}
