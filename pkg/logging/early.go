package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// EarlyLog writes plain lines to stderr before the structured logger exists,
// such as when the config file cannot be read.
type EarlyLog struct {
	w   io.Writer
	now func() time.Time
}

func NewEarlyLog() *EarlyLog {
	return NewEarlyLogTo(os.Stderr)
}

func NewEarlyLogTo(w io.Writer) *EarlyLog {
	return &EarlyLog{w: w, now: time.Now}
}

func (l *EarlyLog) Error(format string, args ...interface{}) { l.write("ERROR", format, args) }
func (l *EarlyLog) Warn(format string, args ...interface{})  { l.write("WARN", format, args) }

func (l *EarlyLog) write(level, format string, args []interface{}) {
	fmt.Fprintf(l.w, "%s %s %s\n", l.now().UTC().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
}
