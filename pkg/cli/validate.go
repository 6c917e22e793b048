package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// ErrDiagnosticsFound is returned by ValidateFiles when any file has diagnostics
var ErrDiagnosticsFound = errors.New("diagnostics found")

// Output formats of the validate command
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidateOptions configures ValidateFiles
type ValidateOptions struct {
	Format           string
	PreciseLocations bool
	Timeout          time.Duration
	Verbose          bool
	// Out receives the report; stdout by default
	Out io.Writer
}

// FileResult is the validation result of one file
type FileResult struct {
	Path        string                   `json:"path"`
	URI         string                   `json:"uri"`
	Skipped     bool                     `json:"skipped,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
	Error       string                   `json:"error,omitempty"`

	source string
}

// ValidateFiles runs the validation pipeline once for every supported file
// under paths, the same way an editor save would, and prints the results.
// It returns ErrDiagnosticsFound when at least one file has diagnostics.
func ValidateFiles(ctx context.Context, paths []string, opts ValidateOptions) error {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Format != FormatText && opts.Format != FormatJSON {
		return fmt.Errorf("invalid format '%s'. Must be '%s' or '%s'", opts.Format, FormatText, FormatJSON)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	files, err := expandPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s, %s or %s files found", ".json", ".yaml", ".yml")
	}

	spinner := console.NewSpinner(fmt.Sprintf("Validating %d file(s)...", len(files)))
	if opts.Format == FormatText && !opts.Verbose {
		spinner.Start()
	}
	results := validatePaths(ctx, files, opts)
	spinner.Stop()

	switch opts.Format {
	case FormatJSON:
		if err := writeJSONReport(out, results); err != nil {
			return err
		}
	default:
		writeTextReport(out, results, opts.Verbose)
	}

	for _, r := range results {
		if len(r.Diagnostics) > 0 || r.Error != "" {
			return ErrDiagnosticsFound
		}
	}
	return nil
}

// validatePaths validates files concurrently, keeping the input order
func validatePaths(ctx context.Context, files []string, opts ValidateOptions) []FileResult {
	bridge := newCollectingBridge()
	p := pipeline.New(bridge, pipeline.WithVerbose(opts.Verbose))
	cfg := pipeline.Config{PreciseLocations: opts.PreciseLocations, Timeout: opts.Timeout}

	workers := pool.NewWithResults[FileResult]().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for _, file := range files {
		workers.Go(func() FileResult {
			return validatePath(ctx, p, bridge, file, cfg)
		})
	}
	results := workers.Wait()

	byPath := make(map[string]FileResult, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}
	ordered := make([]FileResult, 0, len(files))
	for _, file := range files {
		ordered = append(ordered, byPath[file])
	}
	return ordered
}

func validatePath(ctx context.Context, p *pipeline.Pipeline, bridge *collectingBridge, path string, cfg pipeline.Config) FileResult {
	result := FileResult{Path: path, Diagnostics: []diagnostics.Diagnostic{}}
	doc, err := loadDocument(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.URI = doc.URI
	result.source = doc.Text

	run := p.Run(ctx, doc, pipeline.EventSave, cfg)
	if run.Err != nil {
		result.Error = run.Err.Error()
	}
	if run.Skipped() {
		result.Skipped = true
		return result
	}
	if published, ok := bridge.published(doc.URI); ok {
		result.Diagnostics = published
	}
	return result
}

func writeJSONReport(out io.Writer, results []FileResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

func writeTextReport(out io.Writer, results []FileResult, verbose bool) {
	var rows [][]string
	total := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintln(out, console.FormatErrorMessage(r.Error))
		case r.Skipped:
			if verbose {
				fmt.Fprintln(out, console.FormatInfoMessage(fmt.Sprintf("Skipped %s: not a Swagger document", console.ToRelativePath(r.Path))))
			}
			continue
		case len(r.Diagnostics) == 0:
			fmt.Fprintln(out, console.FormatSuccessMessage(fmt.Sprintf("%s is valid", console.ToRelativePath(r.Path))))
		default:
			for _, d := range r.Diagnostics {
				fmt.Fprint(out, console.FormatDiagnostic(r.Path, r.source, d))
			}
		}
		total += len(r.Diagnostics)
		rows = append(rows, []string{console.ToRelativePath(r.Path), strconv.Itoa(len(r.Diagnostics))})
	}

	if len(rows) > 1 {
		fmt.Fprintln(out)
		fmt.Fprint(out, console.RenderTable(console.TableConfig{
			Headers:  []string{"File", "Diagnostics"},
			Rows:     rows,
			TotalRow: []string{"Total", strconv.Itoa(total)},
		}))
	}
}
