package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/parser"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// WatchOptions configures WatchDirectory
type WatchOptions struct {
	PreciseLocations bool
	Timeout          time.Duration
	Verbose          bool
	// Out receives the report; stdout by default
	Out io.Writer
}

// consoleBridge prints published diagnostics as they arrive
type consoleBridge struct {
	out     io.Writer
	verbose bool

	mu      sync.Mutex
	sources map[string]parser.Document
}

func newConsoleBridge(out io.Writer, verbose bool) *consoleBridge {
	return &consoleBridge{out: out, verbose: verbose, sources: make(map[string]parser.Document)}
}

// track remembers the text of a document so diagnostics can show source context
func (b *consoleBridge) track(doc parser.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources[doc.URI] = doc
}

func (b *consoleBridge) forget(uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sources, uri)
}

// println writes one line under the bridge lock so it never interleaves with published results
func (b *consoleBridge) println(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out, line)
}

func (b *consoleBridge) PublishDiagnostics(_ context.Context, uri string, diags []diagnostics.Diagnostic) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := parser.URIToPath(uri)
	doc, tracked := b.sources[uri]
	if !tracked && len(diags) == 0 {
		_, err := fmt.Fprintln(b.out, console.FormatInfoMessage(fmt.Sprintf("%s removed", console.ToRelativePath(path))))
		return err
	}
	if len(diags) == 0 {
		_, err := fmt.Fprintln(b.out, console.FormatSuccessMessage(fmt.Sprintf("%s is valid", console.ToRelativePath(path))))
		return err
	}
	for _, d := range diags {
		if _, err := fmt.Fprint(b.out, console.FormatDiagnostic(path, doc.Text, d)); err != nil {
			return err
		}
	}
	return nil
}

func (b *consoleBridge) NotifyValidated(_ context.Context, report *diagnostics.FailureReport) error {
	if report == nil || !b.verbose {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := fmt.Fprintln(b.out, console.FormatVerboseMessage(report.Message))
	return err
}

// WatchDirectory validates every supported file under dir, then revalidates
// files as they are written. Each write counts as a save. It returns when ctx
// is done or the process receives SIGINT or SIGTERM.
func WatchDirectory(ctx context.Context, dir string, opts WatchOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bridge := newConsoleBridge(out, opts.Verbose)
	p := pipeline.New(bridge, pipeline.WithVerbose(opts.Verbose))
	trigger := pipeline.NewTrigger(p, pipeline.Config{PreciseLocations: opts.PreciseLocations, Timeout: opts.Timeout})
	defer trigger.Wait()

	save := func(path string) {
		doc, err := loadDocument(path)
		if err != nil {
			bridge.println(console.FormatErrorMessage(err.Error()))
			return
		}
		bridge.track(doc)
		trigger.OnSave(ctx, doc)
	}

	bridge.println(console.FormatInfoMessage(fmt.Sprintf("Watching for file changes in %s...", dir)))
	if opts.Verbose {
		bridge.println("Press Ctrl+C to stop watching.")
	}

	files, err := expandPaths([]string{dir})
	if err != nil {
		return err
	}
	for _, file := range files {
		save(file)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name); err != nil && opts.Verbose {
						bridge.println(console.FormatWarningMessage(err.Error()))
					}
					continue
				}
			}
			if !isSupportedFile(event.Name) {
				continue
			}
			if opts.Verbose {
				bridge.println(console.FormatProgressMessage(fmt.Sprintf("Detected change: %s (%s)", event.Name, event.Op.String())))
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				uri := parser.PathToURI(event.Name)
				bridge.forget(uri)
				if err := p.Clear(ctx, uri); err != nil && opts.Verbose {
					bridge.println(console.FormatWarningMessage(err.Error()))
				}
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				save(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if opts.Verbose {
				bridge.println(console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))
			}

		case <-ctx.Done():
			if opts.Verbose {
				bridge.println(console.FormatInfoMessage("Stopping watch mode..."))
			}
			return nil
		}
	}
}

// addWatchDirs adds root and its non-hidden subdirectories to the watcher
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
}
