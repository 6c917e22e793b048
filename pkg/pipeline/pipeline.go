// Package pipeline runs the classify, syntax, schema and publish stages for
// one document and decides, through Trigger, which editor events start a run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swaggitor/swaggitor/internal/mapper"
	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/parser"
	"github.com/swaggitor/swaggitor/pkg/validator"
)

// Event identifies what started a run
type Event int

const (
	EventSave Event = iota
	EventChange
)

func (e Event) String() string {
	if e == EventChange {
		return "change"
	}
	return "save"
}

// Stage is the last stage a run reached
type Stage string

const (
	StageClassify Stage = "classify"
	StageSyntax   Stage = "syntax"
	StageSchema   Stage = "schema"
)

// minLocateConfidence is the lowest locator confidence that replaces the placeholder position
const minLocateConfidence = 0.3

// Result describes one finished run
type Result struct {
	RunID       string
	URI         string
	Event       Event
	Stage       Stage
	Outcome     diagnostics.Failure
	Diagnostics []diagnostics.Diagnostic
	// Stale is set when a newer run for the same document started before this one finished
	Stale    bool
	Duration time.Duration
	// Err holds a delivery error from the bridge
	Err error
}

// Skipped reports whether the document was not a Swagger document
func (r *Result) Skipped() bool {
	return r.Stage == StageClassify
}

// OutcomeLabel returns a short label for the run outcome, used by logs and metrics
func (r *Result) OutcomeLabel() string {
	switch {
	case r.Skipped():
		return "skipped"
	case r.Stale:
		return "stale"
	}
	switch r.Outcome.(type) {
	case diagnostics.Valid, *diagnostics.Valid, nil:
		return "valid"
	case diagnostics.SyntaxFailure, *diagnostics.SyntaxFailure:
		return "syntax_error"
	case diagnostics.ViolationList, *diagnostics.ViolationList:
		return "invalid"
	default:
		return "error"
	}
}

// Pipeline validates documents and publishes the results through a Bridge
type Pipeline struct {
	validator validator.Validator
	bridge    Bridge
	observer  Observer
	verbose   bool
	logOut    io.Writer

	mu      sync.Mutex
	nextSeq uint64
	latest  map[string]uint64
	// publishMu orders the staleness check and the publish of concurrent runs
	publishMu sync.Mutex
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithValidator replaces the default Swagger validator
func WithValidator(v validator.Validator) Option {
	return func(p *Pipeline) { p.validator = v }
}

// WithObserver registers an observer for finished runs
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithVerbose enables verbose run logs
func WithVerbose(verbose bool) Option {
	return func(p *Pipeline) { p.verbose = verbose }
}

// WithLogOutput sets where verbose logs go; stderr by default
func WithLogOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.logOut = w }
}

// New creates a pipeline publishing through bridge
func New(bridge Bridge, opts ...Option) *Pipeline {
	p := &Pipeline{
		validator: validator.NewSwaggerValidator(),
		bridge:    bridge,
		logOut:    os.Stderr,
		latest:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage for doc and publishes the outcome.
// Non-Swagger documents are skipped without publishing anything.
// A run that was overtaken by a newer run for the same URI publishes nothing.
func (p *Pipeline) Run(ctx context.Context, doc parser.Document, event Event, cfg Config) *Result {
	return p.run(ctx, doc, event, cfg, p.begin(doc))
}

// ticket is a run prepared when it was triggered. Skipped runs carry no
// sequence number so they never make a run in flight stale.
type ticket struct {
	started time.Time
	seq     uint64
	skipped bool
	syntax  parser.SyntaxResult
}

// begin classifies and parses doc, and takes a sequence number when the
// run will publish
func (p *Pipeline) begin(doc parser.Document) ticket {
	tk := ticket{started: time.Now()}
	if !parser.IsSwaggerDocument(doc) {
		tk.skipped = true
		return tk
	}
	tk.syntax = parser.ParseSyntax(doc)
	if tk.syntax.NotApplicable() {
		tk.skipped = true
		return tk
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSeq++
	p.latest[doc.URI] = p.nextSeq
	tk.seq = p.nextSeq
	return tk
}

// run finishes a prepared run: schema stage, mapping and publish
func (p *Pipeline) run(ctx context.Context, doc parser.Document, event Event, cfg Config, tk ticket) *Result {
	result := &Result{RunID: uuid.New().String(), URI: doc.URI, Event: event}
	defer func() {
		result.Duration = time.Since(tk.started)
		p.logf("run %s %s %s: %s in %s", result.RunID, event, doc.URI, result.OutcomeLabel(), result.Duration)
		if p.observer != nil {
			p.observer.RunFinished(event, result)
		}
	}()

	if tk.skipped {
		result.Stage = StageClassify
		return result
	}
	if tk.syntax.Failure != nil {
		result.Stage = StageSyntax
		result.Outcome = *tk.syntax.Failure
	} else {
		result.Stage = StageSchema
		result.Outcome = p.runSchemaStage(ctx, doc, tk.syntax.Object, cfg)
	}
	result.Diagnostics = diagnostics.ToDiagnostics(result.Outcome)

	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	if !p.isLatest(doc.URI, tk.seq) {
		result.Stale = true
		return result
	}
	if err := p.bridge.PublishDiagnostics(ctx, doc.URI, result.Diagnostics); err != nil {
		result.Err = fmt.Errorf("failed to publish diagnostics for %s: %w", doc.URI, err)
		return result
	}
	if err := p.bridge.NotifyValidated(ctx, diagnostics.Report(result.Outcome)); err != nil {
		result.Err = fmt.Errorf("failed to send validated notification: %w", err)
	}
	return result
}

// Clear forgets doc state for uri and publishes an empty diagnostic set.
// Runs still in flight for uri become stale.
func (p *Pipeline) Clear(ctx context.Context, uri string) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	delete(p.latest, uri)
	p.mu.Unlock()

	return p.bridge.PublishDiagnostics(ctx, uri, []diagnostics.Diagnostic{})
}

func (p *Pipeline) runSchemaStage(ctx context.Context, doc parser.Document, object map[string]any, cfg Config) diagnostics.Failure {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	outcome := validator.Stage(ctx, p.validator, validator.Input{Object: object, URI: doc.URI})
	if cfg.PreciseLocations {
		outcome = locateViolations(doc.Text, outcome)
	}
	return outcome
}

// locateViolations fills in position hints for violations that carry an
// instance path, using the YAML AST of the document text
func locateViolations(text string, outcome diagnostics.Failure) diagnostics.Failure {
	list, ok := outcome.(diagnostics.ViolationList)
	if !ok || len(list.Violations) == 0 {
		return outcome
	}

	locator := mapper.NewLocator([]byte(text))
	located := list
	located.Violations = make([]diagnostics.Violation, len(list.Violations))
	for i, v := range list.Violations {
		located.Violations[i] = v
		if v.Hint != nil {
			continue
		}
		spans, err := locator.Spans(mapper.Target{Pointer: v.Path, Keyword: v.Kind, Property: v.Property})
		if err != nil || len(spans) == 0 || spans[0].Confidence < minLocateConfidence {
			continue
		}
		located.Violations[i].Hint = &diagnostics.Hint{
			Line:         spans[0].Line,
			Character:    spans[0].Character,
			HasCharacter: true,
		}
	}
	return located
}

func (p *Pipeline) isLatest(uri string, seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest[uri] == seq
}

func (p *Pipeline) logf(format string, args ...any) {
	if !p.verbose || p.logOut == nil {
		return
	}
	fmt.Fprintln(p.logOut, console.FormatVerboseMessage(fmt.Sprintf(format, args...)))
}
