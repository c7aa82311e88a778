// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ParseLevel accepts logrus level names case-insensitively. An empty name
// means info.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(strings.ToLower(name))
}

// Setup sets the level and destination of the standard logger. When file is
// set, output goes there instead of stderr so a full-screen UI keeps the
// terminal. The returned close func releases the file.
func Setup(level, file string) (func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	log.SetLevel(lvl)
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   file != "",
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return closeFn, nil
}
