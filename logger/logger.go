// Package logger is a small leveled logger on top of zerolog's console
// writer.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/refaktor/sobind/textutils"
)

type Level int

const (
	DEBUG Level = -1
	INFO  Level = 0
	WARN  Level = 1
	ERROR Level = 2
	FATAL Level = 99
)

var levelNames = map[Level]string{
	DEBUG: "debug",
	INFO:  "info",
	WARN:  "warn",
	ERROR: "error",
	FATAL: "fatal",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WARN, nil
	}
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		return zerolog.FatalLevel
	default:
		panic(fmt.Sprintf("invalid log level: %v", int(l)))
	}
}

// exit is replaced in tests.
var exit = os.Exit

// Logger writes human readable log lines. A nil *Logger discards
// everything.
type Logger struct {
	zl       zerolog.Logger
	MinLevel Level
}

// New returns a logger writing to w. Colors are only used if w is a
// terminal.
func New(w io.Writer, minLevel Level) *Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	return &Logger{
		zl:       zerolog.New(cw).With().Timestamp().Logger(),
		MinLevel: minLevel,
	}
}

// With returns a logger that tags every line with the pipeline component.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		zl:       l.zl.With().Str("component", component).Logger(),
		MinLevel: l.MinLevel,
	}
}

// Log writes a message formatted like [fmt.Printf]. Multi-line messages
// start on their own line and are indented. FATAL exits the program.
func (l *Logger) Log(level Level, format string, args ...any) {
	if l != nil && level >= l.MinLevel {
		s := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
		if strings.Contains(s, "\n") {
			s = "\n" + textutils.IndentString(s, "  ", 1)
		}
		l.zl.WithLevel(level.zerolog()).Msg(s)
	}
	if level == FATAL {
		exit(1)
	}
}
