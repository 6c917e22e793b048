package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/swaggitor/swaggitor/pkg/parser"
)

// Trigger decides which editor events run the pipeline.
// Saves always run it; content changes only when CheckOnChange is set.
// Classification and parsing happen on the caller's goroutine; the schema
// stage of every qualifying event runs in its own goroutine.
type Trigger struct {
	pipeline *Pipeline
	config   atomic.Pointer[Config]
	runs     conc.WaitGroup
}

// NewTrigger creates a trigger with an initial configuration
func NewTrigger(p *Pipeline, cfg Config) *Trigger {
	t := &Trigger{pipeline: p}
	t.config.Store(&cfg)
	return t
}

// Config returns the configuration currently in effect
func (t *Trigger) Config() Config {
	return *t.config.Load()
}

// OnConfigChange replaces the configuration
func (t *Trigger) OnConfigChange(cfg Config) {
	t.config.Store(&cfg)
}

// OnSave starts a run for doc
func (t *Trigger) OnSave(ctx context.Context, doc parser.Document) {
	t.start(ctx, doc, EventSave)
}

// OnContentChange starts a run for doc when CheckOnChange is enabled.
// It reports whether a run was started.
func (t *Trigger) OnContentChange(ctx context.Context, doc parser.Document) bool {
	if !t.Config().CheckOnChange {
		return false
	}
	t.start(ctx, doc, EventChange)
	return true
}

// Wait blocks until every started run has finished
func (t *Trigger) Wait() {
	t.runs.Wait()
}

func (t *Trigger) start(ctx context.Context, doc parser.Document, event Event) {
	cfg := t.Config()
	tk := t.pipeline.begin(doc)
	t.runs.Go(func() {
		t.pipeline.run(ctx, doc, event, cfg, tk)
	})
}
