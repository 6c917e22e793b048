package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		expectErr  bool
		errMessage string
	}{
		{name: "text format", format: "text"},
		{name: "json format", format: "json"},
		{name: "empty format", format: "", expectErr: true, errMessage: "invalid format value ''"},
		{name: "case sensitive", format: "JSON", expectErr: true, errMessage: "invalid format value 'JSON'"},
		{name: "unknown format", format: "sarif", expectErr: true, errMessage: "invalid format value 'sarif'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormat(tt.format)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("validateFormat(%q) expected error but got none", tt.format)
				}
				if !strings.Contains(err.Error(), tt.errMessage) {
					t.Errorf("validateFormat(%q) error = %v, want it to contain %q", tt.format, err, tt.errMessage)
				}
				return
			}
			if err != nil {
				t.Errorf("validateFormat(%q) unexpected error: %v", tt.format, err)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	if err := validateTimeout(0); err != nil {
		t.Errorf("zero timeout should be accepted: %v", err)
	}
	if err := validateTimeout(2 * time.Second); err != nil {
		t.Errorf("positive timeout should be accepted: %v", err)
	}
	if err := validateTimeout(-time.Second); err == nil {
		t.Error("negative timeout should be rejected")
	}
}

func TestRootCommand(t *testing.T) {
	t.Run("root command is configured", func(t *testing.T) {
		if rootCmd.Use == "" {
			t.Error("rootCmd.Use should not be empty")
		}
		if rootCmd.Short == "" {
			t.Error("rootCmd.Short should not be empty")
		}
		if rootCmd.Long == "" {
			t.Error("rootCmd.Long should not be empty")
		}
	})

	t.Run("subcommands are registered", func(t *testing.T) {
		expected := map[string]bool{"serve": false, "validate": false, "watch": false, "mcp": false, "keys": false, "version": false}
		for _, cmd := range rootCmd.Commands() {
			if _, ok := expected[cmd.Name()]; ok {
				expected[cmd.Name()] = true
			}
		}
		for name, found := range expected {
			if !found {
				t.Errorf("expected subcommand %q to be registered", name)
			}
		}
	})

	t.Run("verbose flag is persistent", func(t *testing.T) {
		flag := rootCmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("verbose flag should be registered")
		}
		if flag.Shorthand != "v" {
			t.Errorf("verbose shorthand = %q, want %q", flag.Shorthand, "v")
		}
	})

	t.Run("command flags have defaults", func(t *testing.T) {
		if f := validateCmd.Flags().Lookup("format"); f == nil || f.DefValue != "text" {
			t.Errorf("validate --format default should be text, got %v", f)
		}
		if f := serveCmd.Flags().Lookup("check-on-change"); f == nil || f.DefValue != "false" {
			t.Errorf("serve --check-on-change default should be false, got %v", f)
		}
		if f := serveCmd.Flags().Lookup("metrics-addr"); f == nil || f.DefValue != "" {
			t.Errorf("serve --metrics-addr default should be empty, got %v", f)
		}
	})
}

func TestRootCommandExecution(t *testing.T) {
	t.Run("root command help", func(t *testing.T) {
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs([]string{"--help"})
		defer func() {
			rootCmd.SetOut(os.Stdout)
			rootCmd.SetArgs([]string{})
		}()

		if err := rootCmd.Execute(); err != nil {
			t.Errorf("root command help failed: %v", err)
		}
		if !strings.Contains(buf.String(), "validate") {
			t.Errorf("help output should list the validate command, got:\n%s", buf.String())
		}
	})

	t.Run("invalid command", func(t *testing.T) {
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetErr(&buf)
		rootCmd.SetArgs([]string{"invalid-command"})
		defer func() {
			rootCmd.SetOut(os.Stdout)
			rootCmd.SetErr(os.Stderr)
			rootCmd.SetArgs([]string{})
		}()

		err := rootCmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected unknown command error, got %v", err)
		}
	})
}
