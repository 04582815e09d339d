// Package log is the levelled operational logger used by the biglisp CLI.
// Program output and diagnostics never go through it.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	NONE
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "NONE"}

var levelColors = [...]string{
	"\033[90m", // Grey
	"\033[36m", // Cyan
	"\033[32m", // Green
	"\033[33m", // Yellow
	"\033[31m", // Red
}

const resetColor = "\033[0m"

type Logger struct {
	level      Level
	color      bool
	fileHandle *os.File
	logger     *log.Logger
	mu         sync.Mutex
}

// Log is the process-wide logger. It discards everything until InitLogger runs.
var Log = New(io.Discard, NONE, false)

// New creates a logger writing to out.
func New(out io.Writer, level Level, color bool) *Logger {
	return &Logger{
		level:  level,
		color:  color && isTerminal(out),
		logger: log.New(out, "", log.LstdFlags),
	}
}

// InitLogger replaces Log. An empty logFile logs to stderr; a file that
// cannot be opened falls back to stderr.
func InitLogger(
	logLevel string,
	logFile string,
	color bool,
) {
	var out io.Writer = os.Stderr
	var fh *os.File

	if logFile != "" {
		var err error
		fh, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			out = fh
		}
	}

	Close()
	Log = New(out, ParseLevel(logLevel), color)
	Log.fileHandle = fh
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ParseLevel maps a level name to a Level. Unknown names disable logging.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return TRACE
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "info":
		return INFO
	default:
		return NONE
	}
}

// ValidLevel reports whether s names a level.
func ValidLevel(s string) bool {
	for _, name := range levelNames {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func (l *Logger) Enabled(level Level) bool {
	return level >= l.level && l.level != NONE
}

func (l *Logger) log(level Level, format string, v ...any) {
	if !l.Enabled(level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, v...)
	tag := levelNames[level]
	if l.color {
		tag = fmt.Sprintf("%s%-5s%s", levelColors[level], tag, resetColor)
	}
	l.logger.Printf("[%s] %s", tag, msg)
}

func Trace(format string, v ...any) { Log.log(TRACE, format, v...) }
func Debug(format string, v ...any) { Log.log(DEBUG, format, v...) }
func Info(format string, v ...any)  { Log.log(INFO, format, v...) }
func Warn(format string, v ...any)  { Log.log(WARN, format, v...) }
func Error(format string, v ...any) { Log.log(ERROR, format, v...) }

func Close() {
	if Log != nil && Log.fileHandle != nil {
		_ = Log.fileHandle.Close()
		Log.fileHandle = nil
	}
}
