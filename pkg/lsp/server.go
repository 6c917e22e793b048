// Package lsp serves the validation pipeline and the completion catalog to
// editors over the Language Server Protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/swaggitor/swaggitor/pkg/completion"
	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/parser"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
	"github.com/swaggitor/swaggitor/pkg/validator"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures the server
type ServerOptions struct {
	// Config is the configuration in effect until the editor sends settings
	Config pipeline.Config
	// Validator replaces the default Swagger validator
	Validator validator.Validator
	// Observer is told about every finished pipeline run
	Observer pipeline.Observer
	Verbose  bool
	// LogOutput receives log lines; stderr by default
	LogOutput io.Writer
	Version   string
}

// Server handles stdio JSON-RPC for the Swagger language server
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]parser.Document
	shutdownRequested bool

	pipeline *pipeline.Pipeline
	trigger  *pipeline.Trigger
	baseCtx  context.Context
	verbose  bool
	logOut   io.Writer
	version  string
}

// NewServer constructs a server reading requests from in and writing to out
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	s := &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		docs:    make(map[string]parser.Document),
		baseCtx: context.Background(),
		verbose: opts.Verbose,
		logOut:  logOut,
		version: opts.Version,
	}

	pipelineOpts := []pipeline.Option{pipeline.WithVerbose(opts.Verbose), pipeline.WithLogOutput(logOut)}
	if opts.Validator != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithValidator(opts.Validator))
	}
	if opts.Observer != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithObserver(opts.Observer))
	}
	s.pipeline = pipeline.New(s, pipelineOpts...)
	s.trigger = pipeline.NewTrigger(s.pipeline, opts.Config)
	return s
}

// Run serves requests until the input ends or the client sends "exit".
// Pipeline runs still in flight are awaited before returning.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.trigger.Wait()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.errorf("failed to parse message: %v", err)
			if sendErr := s.sendError(nil, codeParseError, "parse error"); sendErr != nil {
				return sendErr
			}
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

// Config returns the configuration currently in effect
func (s *Server) Config() pipeline.Config {
	return s.trigger.Config()
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdownRequested() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "completionItem/resolve":
		return s.handleCompletionResolve(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	if len(params.InitializationOptions) > 0 {
		s.applySettings(params.InitializationOptions)
	}

	return s.sendResponse(msg.ID, initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    textDocumentSyncFull,
				Save:      saveOptions{IncludeText: true},
			},
			CompletionProvider: completionOptions{ResolveProvider: true},
		},
		ServerInfo: serverInfo{Name: constants.CLIName, Version: s.version},
	})
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.errorf("invalid didChangeConfiguration params: %v", err)
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	cfg, err := parseSettings(raw, s.trigger.Config())
	if err != nil {
		s.errorf("%v", err)
		return
	}
	s.trigger.OnConfigChange(cfg)
	s.logf("configuration: checkOnChange=%t preciseLocations=%t", cfg.CheckOnChange, cfg.PreciseLocations)
}

// handleDidOpen only records the document; validation starts on save or change
func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.errorf("invalid didOpen params: %v", err)
		return nil
	}
	item := params.TextDocument
	if item.URI == "" {
		return nil
	}
	s.mu.Lock()
	s.docs[item.URI] = parser.NewDocument(item.URI, parser.FormatFromLanguageID(item.LanguageID), item.Text)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.errorf("invalid didChange params: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" || len(params.ContentChanges) == 0 {
		return nil
	}
	// Full sync: the last change carries the whole text
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc, ok := s.updateDocument(uri, text)
	if !ok {
		return nil
	}
	s.trigger.OnContentChange(s.baseCtx, doc)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.errorf("invalid didSave params: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	var (
		doc parser.Document
		ok  bool
	)
	if params.Text != nil {
		doc, ok = s.updateDocument(uri, *params.Text)
	} else {
		s.mu.Lock()
		doc, ok = s.docs[uri]
		s.mu.Unlock()
	}
	if !ok {
		s.logf("didSave for unknown document %s", uri)
		return nil
	}
	s.trigger.OnSave(s.baseCtx, doc)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.errorf("invalid didClose params: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	_, known := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if !known {
		return nil
	}
	if err := s.pipeline.Clear(s.baseCtx, uri); err != nil {
		return fmt.Errorf("failed to clear diagnostics for %s: %w", uri, err)
	}
	return nil
}

// updateDocument replaces the text of an open document and returns the new snapshot
func (s *Server) updateDocument(uri, text string) (parser.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return parser.Document{}, false
	}
	doc = parser.NewDocument(uri, doc.Format, text)
	s.docs[uri] = doc
	return doc, true
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	return s.sendResponse(msg.ID, completion.List(params.Position))
}

func (s *Server) handleCompletionResolve(msg *rpcMessage) error {
	var entry completion.Entry
	if err := json.Unmarshal(msg.Params, &entry); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	return s.sendResponse(msg.ID, completion.Resolve(entry))
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	})
}

func (s *Server) sendNotification(method string, params any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	if !s.verbose {
		return
	}
	fmt.Fprintln(s.logOut, console.FormatVerboseMessage(fmt.Sprintf(format, args...)))
}

func (s *Server) errorf(format string, args ...any) {
	fmt.Fprintln(s.logOut, console.FormatErrorMessage(fmt.Sprintf(format, args...)))
}
