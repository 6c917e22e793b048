package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/diagnostics"
	"github.com/swaggitor/swaggitor/pkg/parser"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// validateToolName is the name of the MCP tool exposing the validation pipeline
const validateToolName = "validate_swagger"

// validateSwaggerArgs are the arguments of the validate_swagger tool.
// Either Path, or Content together with Format, must be set.
type validateSwaggerArgs struct {
	Path    string `json:"path,omitempty" jsonschema:"path of a .json, .yaml or .yml file to validate"`
	Content string `json:"content,omitempty" jsonschema:"document text to validate instead of a file"`
	Format  string `json:"format,omitempty" jsonschema:"format of content: json, yaml or yml"`
}

// toolReport is the JSON text returned by the validate_swagger tool
type toolReport struct {
	URI         string                     `json:"uri"`
	Swagger     bool                       `json:"swagger"`
	Valid       bool                       `json:"valid"`
	Diagnostics []diagnostics.Diagnostic   `json:"diagnostics"`
	Failure     *diagnostics.FailureReport `json:"failure,omitempty"`
}

// MCPOptions configures RunMCPServer
type MCPOptions struct {
	PreciseLocations bool
	Timeout          time.Duration
	Verbose          bool
	Version          string
}

// RunMCPServer serves the validate_swagger tool over MCP on stdio
func RunMCPServer(ctx context.Context, opts MCPOptions) error {
	server := newMCPServer(opts)
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "%s MCP server listening on stdio\n", constants.CLIName)
	}
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func newMCPServer(opts MCPOptions) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: opts.Version}, nil)
	cfg := pipeline.Config{PreciseLocations: opts.PreciseLocations, Timeout: opts.Timeout}

	mcp.AddTool(server, &mcp.Tool{
		Name:        validateToolName,
		Description: "Validate a Swagger 2.0 document and return its diagnostics. Pass either a file path, or the document content with its format.",
	}, func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[validateSwaggerArgs]) (*mcp.CallToolResultFor[any], error) {
		report, err := validateForTool(ctx, params.Arguments, cfg)
		if err != nil {
			return &mcp.CallToolResultFor[any]{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
	return server
}

// validateForTool runs the pipeline for the tool arguments
func validateForTool(ctx context.Context, args validateSwaggerArgs, cfg pipeline.Config) (*toolReport, error) {
	doc, err := documentFromArgs(args)
	if err != nil {
		return nil, err
	}

	bridge := newCollectingBridge()
	run := pipeline.New(bridge).Run(ctx, doc, pipeline.EventSave, cfg)
	if run.Err != nil {
		return nil, run.Err
	}

	report := &toolReport{URI: doc.URI, Diagnostics: []diagnostics.Diagnostic{}}
	if run.Skipped() {
		report.Valid = true
		return report, nil
	}
	report.Swagger = true
	if published, ok := bridge.published(doc.URI); ok {
		report.Diagnostics = published
	}
	report.Valid = len(report.Diagnostics) == 0
	report.Failure = diagnostics.Report(run.Outcome)
	return report, nil
}

func documentFromArgs(args validateSwaggerArgs) (parser.Document, error) {
	switch {
	case args.Path != "" && args.Content != "":
		return parser.Document{}, fmt.Errorf("pass either path or content, not both")
	case args.Path != "":
		path, err := filepath.Abs(args.Path)
		if err != nil {
			return parser.Document{}, fmt.Errorf("invalid path %s: %w", args.Path, err)
		}
		if !isSupportedFile(path) {
			return parser.Document{}, fmt.Errorf("unsupported file type %s: expected .json, .yaml or .yml", filepath.Ext(path))
		}
		return loadDocument(path)
	case args.Content != "":
		format := parser.FormatFromLanguageID(args.Format)
		if format == parser.FormatUnknown {
			return parser.Document{}, fmt.Errorf("invalid format '%s'. Must be 'json', 'yaml' or 'yml'", args.Format)
		}
		return parser.NewDocument("untitled:document."+format.String(), format, args.Content), nil
	default:
		return parser.Document{}, fmt.Errorf("either path or content is required")
	}
}
