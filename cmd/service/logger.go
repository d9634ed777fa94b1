package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped logs to w (stderr when nil). Unknown levels
// fall back to info.
func newLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "watchplay"})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", "value", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
