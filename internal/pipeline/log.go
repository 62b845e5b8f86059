package pipeline

import (
	"fmt"
	"io"
	"os"
)

// Level orders the log verbosity a Logger accepts, from least to most
// chatty.
type Level int

const (
	LevelSilent Level = iota
	LevelDebug
	LevelTrace
)

// Logger is the small leveled logger Manager.RunAll writes pass
// progress through, generalizing a simple --verbose on/off convention
// into two levels instead of one flag. The phases themselves do not
// log. No third-party logging library appears
// anywhere in the retrieved corpus, so this stays on fmt+os.Stderr
// (see DESIGN.md).
type Logger struct {
	level Level
	out   io.Writer
}

// NewLogger creates a Logger writing to os.Stderr at the given level.
func NewLogger(level Level) *Logger {
	return &Logger{level: level, out: os.Stderr}
}

// Debugf logs a Debug-or-louder message.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.level < LevelDebug {
		return
	}
	fmt.Fprintf(l.out, "debug: "+format+"\n", args...)
}

// Tracef logs a Trace-level message, the most verbose tier.
func (l *Logger) Tracef(format string, args ...any) {
	if l == nil || l.level < LevelTrace {
		return
	}
	fmt.Fprintf(l.out, "trace: "+format+"\n", args...)
}
