package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	debugEnabled bool
	logFile      *os.File
	sugar        = zap.NewNop().Sugar()
)

// Init initializes the logger with the specified debug flag
// Creates log directory and file if they don't exist
// Overwrites existing log file on each start
func Init(debug bool) error {
	logDir := filepath.Dir(GetLogPath())
	if logDir == "." {
		return fmt.Errorf("failed to get home directory")
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(GetLogPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	return InitWriter(f, debug)
}

// InitWriter initializes the logger on top of an already opened file.
// Used by the command line tools that log to stderr.
func InitWriter(f *os.File, debug bool) error {
	debugEnabled = debug
	logFile = f

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(f), level)
	sugar = zap.New(core).Sugar()

	Info("webgal_ls started")
	if debugEnabled {
		Info("Debug mode enabled")
	}

	return nil
}

// Close flushes the logger and closes the log file
func Close() error {
	Info("webgal_ls shutting down")
	_ = sugar.Sync()
	sugar = zap.NewNop().Sugar()

	if logFile != nil && logFile != os.Stderr && logFile != os.Stdout {
		err := logFile.Close()
		logFile = nil
		return err
	}
	logFile = nil
	return nil
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

// Debug logs a debug message (only if debug is enabled)
func Debug(format string, v ...interface{}) {
	if debugEnabled {
		sugar.Debugf(format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

// Fatal logs a fatal message and exits
func Fatal(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
	_ = sugar.Sync()
	os.Exit(1)
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share", "webgal_ls", "webgal_ls.log")
}
