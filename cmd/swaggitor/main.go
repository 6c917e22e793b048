package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/swaggitor/swaggitor/pkg/cli"
	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/constants"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var verbose bool

// validateFormat validates the report format flag value
func validateFormat(format string) error {
	if format != cli.FormatText && format != cli.FormatJSON {
		return fmt.Errorf("invalid format value '%s'. Must be '%s' or '%s'", format, cli.FormatText, cli.FormatJSON)
	}
	return nil
}

// validateTimeout rejects negative schema stage timeouts
func validateTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("invalid timeout value '%s'. Must not be negative", timeout)
	}
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Swagger 2.0 diagnostics for editors and the command line",
	Long: `Swaggitor validates Swagger 2.0 API descriptions written in JSON or YAML.

A document is treated as Swagger when its top level contains a "swagger" key.
Syntax errors are reported first; well-formed documents are then checked against
the Swagger 2.0 schema, with every violation reported as a diagnostic.

The serve command speaks the Language Server Protocol over stdio so editors can
show diagnostics and key completions while a document is edited.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	Long: `Run the language server over stdio.

Documents are validated when they are saved. With --check-on-change they are
also validated on every edit. Editors can override both settings through the
"` + constants.ConfigurationSection + `" configuration section.

Examples:
  ` + constants.CLIName + ` serve
  ` + constants.CLIName + ` serve --check-on-change
  ` + constants.CLIName + ` serve --metrics-addr 127.0.0.1:9464`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		checkOnChange, _ := cmd.Flags().GetBool("check-on-change")
		precise, _ := cmd.Flags().GetBool("precise-locations")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if err := validateTimeout(timeout); err != nil {
			exitWithError(err)
		}

		cfg := pipeline.DefaultConfig()
		cfg.CheckOnChange = checkOnChange
		cfg.PreciseLocations = precise
		cfg.Timeout = timeout
		if err := cli.RunServe(context.Background(), cli.ServeOptions{
			Config:      cfg,
			MetricsAddr: metricsAddr,
			Verbose:     verbose,
			Version:     version,
		}); err != nil {
			exitWithError(err)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Validate Swagger documents and report diagnostics",
	Long: `Validate Swagger documents and report diagnostics.

Each path may be a file or a directory. Directories are searched recursively
for .json, .yaml and .yml files. Files that are not Swagger documents are skipped.
With no paths the current directory is validated.

Examples:
  ` + constants.CLIName + ` validate api.yaml
  ` + constants.CLIName + ` validate specs/ --format json
  ` + constants.CLIName + ` validate api.json --precise-locations`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		precise, _ := cmd.Flags().GetBool("precise-locations")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if err := validateFormat(format); err != nil {
			exitWithError(err)
		}
		if err := validateTimeout(timeout); err != nil {
			exitWithError(err)
		}
		if len(args) == 0 {
			args = []string{"."}
		}

		err := cli.ValidateFiles(context.Background(), args, cli.ValidateOptions{
			Format:           format,
			PreciseLocations: precise,
			Timeout:          timeout,
			Verbose:          verbose,
		})
		if errors.Is(err, cli.ErrDiagnosticsFound) {
			os.Exit(1)
		}
		if err != nil {
			exitWithError(err)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Revalidate Swagger documents whenever they change",
	Long: `Watch a directory and revalidate Swagger documents whenever they are written.

Every supported file is validated once at startup. Afterwards each write is
treated like an editor save. Press Ctrl+C to stop.

Examples:
  ` + constants.CLIName + ` watch
  ` + constants.CLIName + ` watch specs/ --precise-locations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		precise, _ := cmd.Flags().GetBool("precise-locations")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if err := validateTimeout(timeout); err != nil {
			exitWithError(err)
		}
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		if err := cli.WatchDirectory(context.Background(), dir, cli.WatchOptions{
			PreciseLocations: precise,
			Timeout:          timeout,
			Verbose:          verbose,
		}); err != nil {
			exitWithError(err)
		}
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing Swagger validation as a tool",
	Long: `Run a Model Context Protocol server over stdio.

The server exposes a single tool that validates a Swagger document given either
a file path or inline content and returns its diagnostics as JSON.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		precise, _ := cmd.Flags().GetBool("precise-locations")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if err := validateTimeout(timeout); err != nil {
			exitWithError(err)
		}
		if err := cli.RunMCPServer(context.Background(), cli.MCPOptions{
			PreciseLocations: precise,
			Timeout:          timeout,
			Verbose:          verbose,
			Version:          version,
		}); err != nil {
			exitWithError(err)
		}
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the completion keys offered to editors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cli.RenderCompletionKeys())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, version)))
	},
}

func init() {
	// Add global verbose flag to root command
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output showing detailed information")

	serveCmd.Flags().Bool("check-on-change", false, "Validate documents on every edit, not only on save")
	serveCmd.Flags().Bool("precise-locations", false, "Point schema diagnostics at the offending key instead of the document start")
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (for example 127.0.0.1:9464)")
	serveCmd.Flags().Duration("timeout", 0, "Abort schema validation after this duration (0 disables the limit)")

	validateCmd.Flags().StringP("format", "f", cli.FormatText, "Report format (text, json)")
	validateCmd.Flags().Bool("precise-locations", false, "Point schema diagnostics at the offending key instead of the document start")
	validateCmd.Flags().Duration("timeout", 0, "Abort schema validation after this duration (0 disables the limit)")

	watchCmd.Flags().Bool("precise-locations", false, "Point schema diagnostics at the offending key instead of the document start")
	watchCmd.Flags().Duration("timeout", 0, "Abort schema validation after this duration (0 disables the limit)")

	mcpCmd.Flags().Bool("precise-locations", false, "Point schema diagnostics at the offending key instead of the document start")
	mcpCmd.Flags().Duration("timeout", 0, "Abort schema validation after this duration (0 disables the limit)")

	// Add all commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
