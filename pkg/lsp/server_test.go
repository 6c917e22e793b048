package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/swaggitor/swaggitor/pkg/completion"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
	"github.com/swaggitor/swaggitor/pkg/validator"
)

const validSwagger = `{"swagger": "2.0", "info": {"title": "x", "version": "1"}, "paths": {}}`

type request struct {
	id     int
	method string
	params any
}

// script frames the requests as a client would send them. A zero id makes a notification.
func script(t *testing.T, requests ...request) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range requests {
		msg := map[string]any{"jsonrpc": "2.0", "method": r.method}
		if r.id != 0 {
			msg["id"] = r.id
		}
		if r.params != nil {
			msg["params"] = r.params
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal %s: %v", r.method, err)
		}
		if err := writeMessage(&buf, payload); err != nil {
			t.Fatalf("frame %s: %v", r.method, err)
		}
	}
	return &buf
}

func readOutput(t *testing.T, out []byte) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out))
	var messages []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return messages
		}
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		messages = append(messages, msg)
	}
}

func byMethod(messages []rpcMessage, method string) []rpcMessage {
	var out []rpcMessage
	for _, m := range messages {
		if m.Method == method {
			out = append(out, m)
		}
	}
	return out
}

func responseTo(t *testing.T, messages []rpcMessage, id int) rpcMessage {
	t.Helper()
	want, _ := json.Marshal(id)
	for _, m := range messages {
		if m.Method == "" && string(m.ID) == string(want) {
			return m
		}
	}
	t.Fatalf("no response with id %d", id)
	return rpcMessage{}
}

func runServer(t *testing.T, opts ServerOptions, requests ...request) ([]rpcMessage, error) {
	t.Helper()
	var out bytes.Buffer
	opts.LogOutput = io.Discard
	server := NewServer(script(t, requests...), &out, opts)
	err := server.Run(context.Background())
	return readOutput(t, out.Bytes()), err
}

func openDoc(uri, languageID, text string) request {
	return request{method: "textDocument/didOpen", params: didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	}}
}

func saveDoc(uri string) request {
	return request{method: "textDocument/didSave", params: didSaveTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}}}
}

func changeDoc(uri, text string) request {
	return request{method: "textDocument/didChange", params: didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: text}},
	}}
}

func publishedFor(t *testing.T, messages []rpcMessage, uri string) [][]diagnostics.Diagnostic {
	t.Helper()
	var sets [][]diagnostics.Diagnostic
	for _, m := range byMethod(messages, "textDocument/publishDiagnostics") {
		var params publishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			t.Fatalf("decode publish params: %v", err)
		}
		if params.URI == uri {
			sets = append(sets, params.Diagnostics)
		}
	}
	return sets
}

func TestInitialize(t *testing.T) {
	messages, err := runServer(t, ServerOptions{Version: "1.2.3"},
		request{id: 1, method: "initialize", params: map[string]any{"rootUri": "file:///tmp"}},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var result initializeResult
	if err := json.Unmarshal(responseTo(t, messages, 1).Result, &result); err != nil {
		t.Fatalf("decode initialize result: %v", err)
	}
	caps := result.Capabilities
	if caps.TextDocumentSync.Change != textDocumentSyncFull || !caps.TextDocumentSync.Save.IncludeText {
		t.Errorf("unexpected sync capabilities %+v", caps.TextDocumentSync)
	}
	if !caps.CompletionProvider.ResolveProvider {
		t.Error("expected the completion resolve provider")
	}
	if result.ServerInfo.Name != "swaggitor" || result.ServerInfo.Version != "1.2.3" {
		t.Errorf("unexpected server info %+v", result.ServerInfo)
	}
}

func TestInitializationOptionsSeedConfig(t *testing.T) {
	var out bytes.Buffer
	server := NewServer(script(t,
		request{id: 1, method: "initialize", params: map[string]any{
			"initializationOptions": map[string]any{"swaggitor": map[string]any{"checkOnChange": true}},
		}},
	), &out, ServerOptions{LogOutput: io.Discard})
	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !server.Config().CheckOnChange {
		t.Error("expected initialization options to enable checkOnChange")
	}
}

func TestSaveSchemaViolation(t *testing.T) {
	uri := "file:///tmp/api.json"
	v := validator.ValidatorFunc(func(ctx context.Context, input validator.Input) error {
		return &validator.ValidationError{
			Message: "Swagger schema validation failed.",
			Details: []validator.Detail{{Message: "swagger must be string '2.0'"}},
		}
	})

	messages, err := runServer(t, ServerOptions{Validator: v},
		openDoc(uri, "json", `{"swagger": 3}`),
		saveDoc(uri),
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	sets := publishedFor(t, messages, uri)
	if len(sets) != 1 || len(sets[0]) != 1 {
		t.Fatalf("expected one publish with one diagnostic, got %+v", sets)
	}
	raw, _ := json.Marshal(sets[0][0])
	want := `{"severity":2,"code":0,"message":"swagger must be string '2.0'","range":{"start":{"line":0,"character":1},"end":{"line":0,"character":1}},"source":"Swaggitor"}`
	if string(raw) != want {
		t.Errorf("unexpected diagnostic\n got: %s\nwant: %s", raw, want)
	}

	validated := byMethod(messages, "validated")
	if len(validated) != 1 {
		t.Fatalf("expected one validated notification, got %d", len(validated))
	}
	var report diagnostics.FailureReport
	if err := json.Unmarshal(validated[0].Params, &report); err != nil {
		t.Fatalf("decode validated params: %v", err)
	}
	if report.Message != "Swagger schema validation failed." || len(report.Details) != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestSaveValidDocument(t *testing.T) {
	uri := "file:///tmp/api.json"
	messages, err := runServer(t, ServerOptions{},
		openDoc(uri, "json", validSwagger),
		request{method: "textDocument/didSave", params: map[string]any{
			"textDocument": map[string]any{"uri": uri},
			"text":         validSwagger,
		}},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	sets := publishedFor(t, messages, uri)
	if len(sets) != 1 || sets[0] == nil || len(sets[0]) != 0 {
		t.Fatalf("expected one empty publish, got %#v", sets)
	}
	validated := byMethod(messages, "validated")
	if len(validated) != 1 {
		t.Fatalf("expected one validated notification, got %d", len(validated))
	}
	if params := string(validated[0].Params); params != "" && params != "null" {
		t.Errorf("expected a null payload, got %s", params)
	}
}

func TestOpenDoesNotValidate(t *testing.T) {
	messages, err := runServer(t, ServerOptions{}, openDoc("file:///tmp/api.json", "json", `{"swagger": "2.0"}`))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := len(byMethod(messages, "textDocument/publishDiagnostics")); n != 0 {
		t.Errorf("expected no publishes after didOpen, got %d", n)
	}
}

func TestChangeRespectsCheckOnChange(t *testing.T) {
	first := "file:///tmp/first.yaml"
	second := "file:///tmp/second.yaml"
	broken := "swagger: 2.0\n  bad: indent:"

	messages, err := runServer(t, ServerOptions{},
		openDoc(first, "yaml", ""),
		openDoc(second, "yaml", ""),
		changeDoc(first, broken),
		request{method: "workspace/didChangeConfiguration", params: map[string]any{
			"settings": map[string]any{"swaggitor": map[string]any{"checkOnChange": true}},
		}},
		changeDoc(second, broken),
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if sets := publishedFor(t, messages, first); len(sets) != 0 {
		t.Errorf("expected no run before checkOnChange was enabled, got %+v", sets)
	}
	sets := publishedFor(t, messages, second)
	if len(sets) != 1 || len(sets[0]) != 1 {
		t.Fatalf("expected one syntax diagnostic after checkOnChange was enabled, got %+v", sets)
	}
	if sets[0][0].Range.Start.Line != 1 {
		t.Errorf("expected the YAML error on line 1, got %+v", sets[0][0].Range)
	}
}

func TestUnknownLanguageIsIgnored(t *testing.T) {
	uri := "file:///tmp/notes.md"
	messages, err := runServer(t, ServerOptions{},
		openDoc(uri, "markdown", "swagger: 2.0"),
		saveDoc(uri),
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := len(byMethod(messages, "textDocument/publishDiagnostics")); n != 0 {
		t.Errorf("expected no publishes for an unknown language, got %d", n)
	}
}

func TestCloseClearsDiagnostics(t *testing.T) {
	uri := "file:///tmp/api.json"
	messages, err := runServer(t, ServerOptions{},
		openDoc(uri, "json", `{"swagger": "2.0"}`),
		request{method: "textDocument/didClose", params: didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}}},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	sets := publishedFor(t, messages, uri)
	if len(sets) != 1 || len(sets[0]) != 0 {
		t.Fatalf("expected a single clearing publish, got %+v", sets)
	}
}

func TestCompletion(t *testing.T) {
	entry := completion.List(completion.Position{})[0]
	messages, err := runServer(t, ServerOptions{},
		request{id: 1, method: "textDocument/completion", params: completionParams{
			TextDocument: textDocumentIdentifier{URI: "file:///tmp/api.yaml"},
			Position:     completion.Position{Line: 3, Character: 2},
		}},
		request{id: 2, method: "completionItem/resolve", params: entry},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var items []completion.Entry
	if err := json.Unmarshal(responseTo(t, messages, 1).Result, &items); err != nil {
		t.Fatalf("decode completion result: %v", err)
	}
	if len(items) != 2 || items[0].Label != "swagger" || items[1].Label != "info" {
		t.Errorf("unexpected completion items %+v", items)
	}

	var resolved completion.Entry
	if err := json.Unmarshal(responseTo(t, messages, 2).Result, &resolved); err != nil {
		t.Fatalf("decode resolve result: %v", err)
	}
	if resolved != entry {
		t.Errorf("expected resolve to return the entry unchanged, got %+v", resolved)
	}
}

func TestExit(t *testing.T) {
	tests := []struct {
		name     string
		requests []request
		expected error
	}{
		{
			name:     "after shutdown",
			requests: []request{{id: 1, method: "shutdown"}, {method: "exit"}},
			expected: ErrExit,
		},
		{
			name:     "without shutdown",
			requests: []request{{method: "exit"}},
			expected: ErrExitWithoutShutdown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runServer(t, ServerOptions{}, tt.requests...)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestUnknownRequest(t *testing.T) {
	messages, err := runServer(t, ServerOptions{},
		request{id: 7, method: "textDocument/hover"},
		request{method: "$/cancelRequest", params: map[string]any{"id": 3}},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	resp := responseTo(t, messages, 7)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp.Error)
	}
	if len(messages) != 1 {
		t.Errorf("expected notifications to be ignored, got %d messages", len(messages))
	}
}

func TestObserverReceivesRuns(t *testing.T) {
	observer := &countingObserver{}
	uri := "file:///tmp/api.json"
	_, err := runServer(t, ServerOptions{Observer: observer},
		openDoc(uri, "json", validSwagger),
		saveDoc(uri),
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if observer.runs != 1 {
		t.Errorf("expected one observed run, got %d", observer.runs)
	}
}

type countingObserver struct {
	runs int
}

func (o *countingObserver) RunFinished(pipeline.Event, *pipeline.Result) {
	o.runs++
}
