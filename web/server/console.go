package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// SlogLogger implements core.Logger on top of a slog.Logger
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger adapts logger to core.Logger. A nil logger uses slog.Default.
func NewSlogLogger(logger *slog.Logger) core.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// Printf implements core.Logger
func (sl *SlogLogger) Printf(format string, args ...interface{}) {
	sl.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	logger      *slog.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(logger *slog.Logger, renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebLogger{
		logger:      logger.With("render", renderID),
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.logger.Info(strings.TrimRight(message, "\n"))

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}
