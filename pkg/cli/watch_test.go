package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// exclusiveWriter records writes that overlap with another write
type exclusiveWriter struct {
	syncBuffer
	active   atomic.Int32
	overlaps atomic.Int32
}

func (w *exclusiveWriter) Write(p []byte) (int, error) {
	if w.active.Add(1) > 1 {
		w.overlaps.Add(1)
	}
	defer w.active.Add(-1)
	time.Sleep(time.Millisecond)
	return w.syncBuffer.Write(p)
}

func waitForOutput(t *testing.T, out fmt.Stringer, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), substr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, got:\n%s", substr, out.String())
}

func TestWatchDirectory(t *testing.T) {
	dir := writeFiles(t, map[string]string{"api.yaml": validPetstore})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- WatchDirectory(ctx, dir, WatchOptions{Out: out})
	}()

	waitForOutput(t, out, "api.yaml is valid")

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"swagger": "2.0",}`), 0644); err != nil {
		t.Fatalf("write broken.json: %v", err)
	}
	waitForOutput(t, out, "broken.json:")

	if err := os.Remove(broken); err != nil {
		t.Fatalf("remove broken.json: %v", err)
	}
	waitForOutput(t, out, "broken.json removed")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchDirectory returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WatchDirectory did not stop after cancel")
	}
}

func TestWatchDirectoryErrors(t *testing.T) {
	file := filepath.Join(writeFiles(t, map[string]string{"api.yaml": validPetstore}), "api.yaml")

	tests := []struct {
		name    string
		dir     string
		message string
	}{
		{name: "missing directory", dir: filepath.Join(t.TempDir(), "missing"), message: "cannot watch"},
		{name: "file instead of directory", dir: file, message: "is not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WatchDirectory(context.Background(), tt.dir, WatchOptions{Out: &syncBuffer{}})
			if err == nil || !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing %q, got %v", tt.message, err)
			}
		})
	}
}

func TestWatchDirectorySerializesOutput(t *testing.T) {
	files := map[string]string{}
	for i := range 8 {
		files[fmt.Sprintf("api%d.yaml", i)] = validPetstore
	}
	dir := writeFiles(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &exclusiveWriter{}
	done := make(chan error, 1)
	go func() {
		done <- WatchDirectory(ctx, dir, WatchOptions{Out: out, Verbose: true})
	}()
	waitForOutput(t, out, "api7.yaml is valid")

	for i := range 8 {
		path := filepath.Join(dir, fmt.Sprintf("api%d.yaml", i))
		if err := os.WriteFile(path, []byte(validPetstore), 0644); err != nil {
			t.Fatalf("rewrite %s: %v", path, err)
		}
	}
	waitForOutput(t, out, "Detected change")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("WatchDirectory returned error: %v", err)
	}
	if n := out.overlaps.Load(); n != 0 {
		t.Errorf("expected serialized output, got %d overlapping writes", n)
	}
}
