// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger. It is usable before Init with logrus defaults
// writing to stderr.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init configures the global logger. level is a logrus level name ("debug",
// "info", ...) and falls back to info; format "json" selects the JSON
// formatter, anything else the text formatter. stdout is reserved for the
// game screen and the MCP protocol, so out is normally stderr or a file.
func Init(level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if out == nil {
		out = os.Stderr
	}
	Log.SetOutput(out)
}

// Silence discards all log output. Tests and the terminal UI use it.
func Silence() {
	Log.SetOutput(io.Discard)
}
