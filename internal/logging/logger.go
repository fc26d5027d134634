package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// DebugLogName is the file the TUI writes its log to, keeping the terminal
// clean while it owns the screen.
const DebugLogName = "ladspa-source-debug.log"

// New returns a logger writing to w at level, prefixed with the program name.
// debug forces the debug level and adds caller information.
func New(w io.Writer, level log.Level, debug bool) *log.Logger {
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "ladspa-source",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		ReportCaller:    debug,
	})
}

// OpenDebugLog creates the debug log file in the working directory and
// returns a logger writing to it.
func OpenDebugLog(level log.Level, debug bool) (*log.Logger, *os.File, error) {
	f, err := os.Create(DebugLogName)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level, debug), f, nil
}
