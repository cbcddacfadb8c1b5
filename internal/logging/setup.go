// Package logging builds the structured logger shared by every command.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the given level. An unknown level
// falls back to info and is reported once through the returned logger.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "llmstack",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.SetLevel(log.InfoLevel)
		logger.Warn("invalid log level, using info", "level", level)
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}
