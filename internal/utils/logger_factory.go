package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	openLogOutputTemplateConstant        = "unable to open log output: %w"
	standardErrorOutputPathConstant      = "stderr"
	processIdentifierFieldConstant       = "pid"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Supported log formats. Structured writes one JSON object per entry.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var zapLevels = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
// Entries are written to outputPaths, or to standard error when none are given.
// Every entry carries the process id so runs sharing one log file can be told apart.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat, outputPaths []string) (*zap.Logger, error) {
	zapLevel, levelSupported := zapLevels[requestedLogLevel]
	if !levelSupported {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoder, encoderError := newLogEncoder(requestedLogFormat)
	if encoderError != nil {
		return nil, encoderError
	}

	sink, _, openError := zap.Open(nonBlankOutputPaths(outputPaths)...)
	if openError != nil {
		return nil, fmt.Errorf(openLogOutputTemplateConstant, openError)
	}
	errorSink, _, errorSinkError := zap.Open(standardErrorOutputPathConstant)
	if errorSinkError != nil {
		return nil, fmt.Errorf(openLogOutputTemplateConstant, errorSinkError)
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(zapLevel))
	return zap.New(
		core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(errorSink),
		zap.Fields(zap.Int(processIdentifierFieldConstant, os.Getpid())),
	), nil
}

func newLogEncoder(format LogFormat) (zapcore.Encoder, error) {
	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, format)
	}
}

func nonBlankOutputPaths(outputPaths []string) []string {
	resolved := make([]string, 0, len(outputPaths))
	for _, outputPath := range outputPaths {
		if trimmed := strings.TrimSpace(outputPath); len(trimmed) > 0 {
			resolved = append(resolved, trimmed)
		}
	}
	if len(resolved) == 0 {
		return []string{standardErrorOutputPathConstant}
	}
	return resolved
}
