package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultFile is the log file written next to the working directory.
const DefaultFile = "center_mouse.log"

const timeFormat = "2006-01-02 15:04:05"

// Config controls where and how much the logger writes.
type Config struct {
	Level   string    // zerolog level name, defaults to info
	Output  io.Writer // primary sink, usually the log file
	Console io.Writer // optional second sink (stderr)
}

// OpenFile creates path, truncating whatever the previous run left behind.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// New builds a logger emitting "<timestamp> - <LEVEL> - <message>" lines.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var w io.Writer = newLineWriter(out)
	if cfg.Console != nil {
		w = zerolog.MultiLevelWriter(w, newLineWriter(cfg.Console))
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func newLineWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: timeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FormatLevel: formatLevel,
	}
}

func formatLevel(i interface{}) string {
	s, ok := i.(string)
	if !ok {
		return "- ??? -"
	}
	switch s {
	case "warn":
		s = "warning"
	case "fatal", "panic":
		s = "critical"
	}
	return "- " + strings.ToUpper(s) + " -"
}
