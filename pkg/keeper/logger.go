package keeper

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the minimal logging seam used by the keeper. It can be swapped
// for any structured logger via WithLogger.
type Logger interface {
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// defaultLogger implements Logger using Go's standard log package. Debug
// output is discarded unless a caller installs its own Logger via WithLogger.
type defaultLogger struct {
	errorLogger *log.Logger
	debugLogger *log.Logger
}

func newDefaultLogger() Logger {
	return &defaultLogger{
		errorLogger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		debugLogger: log.New(io.Discard, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, args...))
}

func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	l.debugLogger.Output(2, fmt.Sprintf(format, args...))
}
