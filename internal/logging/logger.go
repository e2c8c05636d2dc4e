// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// VerboseEnv forces debug logging when set to "1".
const VerboseEnv = "DEVDEVMAN_VERBOSE"

// Options controls how New builds a logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error or off. Unknown values mean info.
	Level string
	// Format is "json" or anything else for the colorful console formatter.
	Format string
	// Writer defaults to os.Stderr so logs never mix with command output.
	Writer io.Writer
}

// IsVerbose reports whether verbose mode is enabled through the environment.
func IsVerbose() bool {
	return os.Getenv(VerboseEnv) == "1"
}

// New returns a pterm logger configured from opts.
func New(opts Options) *pterm.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)
	if IsVerbose() && level > pterm.LogLevelDebug {
		level = pterm.LogLevelDebug
	}
	if level == pterm.LogLevelDisabled {
		w = io.Discard
	}

	l := pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w)
	if strings.EqualFold(opts.Format, "json") {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return l
}

// Discard returns a logger that drops everything; used where no sink is configured.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}

// ParseLevel maps a config string onto a pterm log level.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "none", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
