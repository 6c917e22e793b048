package lsp

import (
	"context"

	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

// PublishDiagnostics sends textDocument/publishDiagnostics for uri.
// A nil list is sent as an empty array so that it clears the editor view.
func (s *Server) PublishDiagnostics(_ context.Context, uri string, diags []diagnostics.Diagnostic) error {
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// NotifyValidated sends the custom "validated" notification.
// The payload is null when the document is valid.
func (s *Server) NotifyValidated(_ context.Context, report *diagnostics.FailureReport) error {
	var params any
	if report != nil {
		params = report
	}
	return s.sendNotification(constants.ValidatedMethod, params)
}
