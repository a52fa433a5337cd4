package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

var (
	_ metdbload.Logger = (*ConsoleLogger)(nil)
	_ metdbload.Logger = (*NullLogger)(nil)
)

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func(l *ConsoleLogger)
		want    string
	}{
		{"verbose enabled", true, func(l *ConsoleLogger) { l.Verbose("msg: %s", "v") }, "[VERBOSE] msg: v\n"},
		{"verbose disabled", false, func(l *ConsoleLogger) { l.Verbose("msg: %s", "v") }, ""},
		{"info", false, func(l *ConsoleLogger) { l.Info("info %d", 1) }, "info 1\n"},
		{"warn", false, func(l *ConsoleLogger) { l.Warn("Duplicate file %s", "/a/b") }, "[WARN] Duplicate file /a/b\n"},
		{"error", false, func(l *ConsoleLogger) { l.Error("failed") }, "[ERROR] failed\n"},
		{"percent without args", false, func(l *ConsoleLogger) { l.Info("100%") }, "100%\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWriterLogger(&buf, tt.verbose))
			if buf.String() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestConsoleLogger_DefaultsToStderr(t *testing.T) {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	NewConsoleLogger(false).Info("to stderr")

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	if buf.String() != "to stderr\n" {
		t.Errorf("Expected stderr output, got %q", buf.String())
	}
}

func TestConsoleLogger_ConcurrentSafety(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Warn("warn %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("Expected 100 lines, got %d", len(lines))
	}
}

func ExampleNullLogger() {
	logger := NewNullLogger()
	logger.Info("This message is discarded")
	logger.Warn("This too")
	fmt.Println("Done")
	// Output:
	// Done
}
