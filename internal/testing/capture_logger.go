package testing

import (
	"fmt"
	"strings"
	"sync"
)

// CaptureLogger records formatted messages per level.
type CaptureLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

// NewCaptureLogger creates an empty CaptureLogger.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{messages: make(map[string][]string)}
}

func (c *CaptureLogger) add(level, format string, args []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[level] = append(c.messages[level], fmt.Sprintf(format, args...))
}

func (c *CaptureLogger) Verbose(format string, args ...interface{}) { c.add("verbose", format, args) }
func (c *CaptureLogger) Info(format string, args ...interface{})    { c.add("info", format, args) }
func (c *CaptureLogger) Warn(format string, args ...interface{})    { c.add("warn", format, args) }
func (c *CaptureLogger) Error(format string, args ...interface{})   { c.add("error", format, args) }

// Messages returns the messages logged at level ("verbose", "info", "warn", "error").
func (c *CaptureLogger) Messages(level string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages[level]...)
}

// Contains reports whether any message at level contains substr.
func (c *CaptureLogger) Contains(level, substr string) bool {
	for _, m := range c.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
