package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"plateocr/internal/config"
	"sync"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
// An empty LogDirectory keeps output on the console only.
func NewLogger(config *config.Config) *Logger {
	logger := &Logger{
		logDir: config.LogDirectory,
	}

	if logger.logDir != "" {
		if err := os.MkdirAll(logger.logDir, 0755); err != nil {
			log.Fatalf("Failed to create log directory: %v", err)
		}
	}

	logger.setupLoggers(os.Stdout, os.Stderr)
	return logger
}

// NewConsoleLogger writes every level to w and never touches the filesystem.
func NewConsoleLogger(w io.Writer) *Logger {
	logger := &Logger{}
	logger.setupLoggers(w, w)
	return logger
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers(out, errOut io.Writer) {
	infoWriter, warningWriter, errorWriter := out, out, errOut

	if l.logDir != "" {
		infoWriter = io.MultiWriter(out, l.openLogFile(filepath.Join(l.logDir, "info.log")))
		warningWriter = io.MultiWriter(out, l.openLogFile(filepath.Join(l.logDir, "warning.log")))
		errorWriter = io.MultiWriter(errOut, l.openLogFile(filepath.Join(l.logDir, "error.log")))
	}

	l.infoLog = log.New(infoWriter, "INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(warningWriter, "WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(errorWriter, "ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) *os.File {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", filename, err)
	}
	return file
}

// LogDirectory returns the directory holding the per-level files, or "" for console only.
func (l *Logger) LogDirectory() string {
	return l.logDir
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}

	filePath := filepath.Join(l.logDir, fileName)
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.Error("Error opening file: %v", err)
		return err
	}
	defer file.Close()

	l.Info("File %s has been cleared.", fileName)
	return nil
}
