package cli

import (
	"context"
	"sync"

	"github.com/swaggitor/swaggitor/pkg/diagnostics"
)

// collectingBridge keeps the latest published state per document
type collectingBridge struct {
	mu          sync.Mutex
	diagnostics map[string][]diagnostics.Diagnostic
}

func newCollectingBridge() *collectingBridge {
	return &collectingBridge{diagnostics: make(map[string][]diagnostics.Diagnostic)}
}

func (b *collectingBridge) PublishDiagnostics(_ context.Context, uri string, diags []diagnostics.Diagnostic) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diagnostics[uri] = diags
	return nil
}

func (b *collectingBridge) NotifyValidated(context.Context, *diagnostics.FailureReport) error {
	return nil
}

// published returns the diagnostics last published for uri
func (b *collectingBridge) published(uri string) ([]diagnostics.Diagnostic, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	diags, ok := b.diagnostics[uri]
	return diags, ok
}
