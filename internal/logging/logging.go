// Package logging is the shared leveled logger for the CLI and its workers,
// a thin facade over zap. Init wires a console core and, when a log file is
// configured, a rotating JSON file core.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = zap.NewNop().Sugar()

// Init configures the package logger. level is one of debug, info, warn,
// error. logFile enables the rotating file sink when non-empty.
func Init(level, logFile string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), lvl),
	}
	if logFile != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), fileSink, lvl))
	}
	log = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

// Debug logs a debug message
func Debug(format string, args ...any) { log.Debugf(format, args...) }

// Info logs an info message
func Info(format string, args ...any) { log.Infof(format, args...) }

// Warn logs a warning message
func Warn(format string, args ...any) { log.Warnf(format, args...) }

// Error logs an error message
func Error(format string, args ...any) { log.Errorf(format, args...) }

// Sync flushes buffered log entries.
func Sync() { _ = log.Sync() }
