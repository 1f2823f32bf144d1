// Package logs is a small leveled logger. Diagnostics go to stderr so they do
// not interleave with the console UI on stdout.
package logs

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelOff
)

var logLevel atomic.Int32

var logger *Logger

type Logger struct {
	traceLogger *log.Logger
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

func init() {
	logLevel.Store(LevelWarning)
	SetOutput(os.Stderr)
}

// SetOutput redirects every level to w.
func SetOutput(w io.Writer) {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
	logger = &Logger{
		traceLogger: log.New(w, "[TRACE] ", flags),
		debugLogger: log.New(w, "[DEBUG] ", flags),
		infoLogger:  log.New(w, "[INFO]  ", flags),
		warnLogger:  log.New(w, "[WARN]  ", flags),
		errorLogger: log.New(w, "[ERROR] ", flags),
	}
}

// SetLevel sets the minimum level that is written.
func SetLevel(level int) {
	logLevel.Store(int32(level))
}

func enabled(level int) bool {
	return int(logLevel.Load()) <= level
}

func Trace(format string, v ...interface{}) {
	if enabled(LevelTrace) {
		logger.traceLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		logger.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		logger.infoLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(LevelWarning) {
		logger.warnLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Error(format string, v ...interface{}) {
	if enabled(LevelError) {
		logger.errorLogger.Output(2, fmt.Sprintf(format, v...))
	}
}
