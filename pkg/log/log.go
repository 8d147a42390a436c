// Package log wraps zap behind package-level helpers.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	// Usable before Init so that library code can log in tests.
	l, _ := zap.NewDevelopment()
	sugar = l.Sugar()
}

// Init builds the zap logger from config values.
func Init(level, format, outputPath string) {
	var err error
	var logger *zap.Logger
	var zapConfig zap.Config

	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	encoding := "json"
	if format == "console" {
		encoding = "console"
	}

	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = logLevel
	zapConfig.Encoding = encoding
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, outputPath+"/app.log")
	}

	logger, err = zapConfig.Build()
	if err != nil {
		panic(err)
	}

	sugar = logger.Sugar()
}

// Info logs a message at info level.
func Info(msg string) {
	sugar.Info(msg)
}

// Infof logs a formatted message at info level.
func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow logs a structured message with key/value pairs.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

// Warnf logs a formatted message at warn level.
func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Error logs a message at error level with the attached error.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

// Fatal logs the message and error, then exits.
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	_ = sugar.Sync()
}
