package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugOn atomic.Bool
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a Logger writing info/warn/debug to out and errors to errOut.
func NewLoggerTo(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// SetDebug toggles Debug output. Debug lines are dropped by default.
func (l *Logger) SetDebug(on bool) {
	l.debugOn.Store(on)
}

// DisableColor strips level colors for every Logger in the process.
func DisableColor() {
	color.NoColor = true
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf("[%s] %s  %s", l.timestamp(), levelTag(color.FgGreen, "INFO"), fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf("[%s] %s  %s", l.timestamp(), levelTag(color.FgYellow, "WARN"), fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf("[%s] %s %s", l.timestamp(), levelTag(color.FgRed, "ERROR"), fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugOn.Load() {
		return
	}
	l.debug.Printf("[%s] %s %s", l.timestamp(), levelTag(color.FgCyan, "DEBUG"), fmt.Sprintf(format, args...))
}

// levelTag is built per call so DisableColor takes effect immediately.
func levelTag(attr color.Attribute, name string) string {
	return color.New(attr).Sprint(name)
}
