package pipeline

import (
	"context"

	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

// Bridge delivers pipeline results to the host editor.
type Bridge interface {
	// PublishDiagnostics replaces the diagnostics shown for uri.
	// An empty slice clears them.
	PublishDiagnostics(ctx context.Context, uri string, diags []diagnostics.Diagnostic) error
	// NotifyValidated sends the "validated" notification. A nil report means success.
	NotifyValidated(ctx context.Context, report *diagnostics.FailureReport) error
}

// Observer is told about every finished pipeline run
type Observer interface {
	RunFinished(event Event, result *Result)
}
