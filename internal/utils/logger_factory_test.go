package utils_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/utils"
)

const (
	testLogMessageConstant         = "repository refreshed"
	testFilteredLogMessageConstant = "walk step"
	testLogFileNameConstant        = "manahg.log"
)

func TestLoggerFactoryCreateLoggerEncodings(testInstance *testing.T) {
	testCases := []struct {
		name             string
		level            utils.LogLevel
		format           utils.LogFormat
		expectStructured bool
		expectDebugEntry bool
	}{
		{name: "debug_structured", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectStructured: true, expectDebugEntry: true},
		{name: "info_structured", level: utils.LogLevelInfo, format: utils.LogFormatStructured, expectStructured: true},
		{name: "info_console", level: utils.LogLevelInfo, format: utils.LogFormatConsole},
		{name: "warn_console", level: utils.LogLevelWarn, format: utils.LogFormatConsole},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			logFilePath := filepath.Join(subtest.TempDir(), testLogFileNameConstant)
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.level, testCase.format, []string{" ", logFilePath})
			require.NoError(subtest, creationError)

			logger.Warn(testLogMessageConstant)
			logger.Debug(testFilteredLogMessageConstant)
			require.NoError(subtest, logger.Sync())

			contents, readError := os.ReadFile(logFilePath)
			require.NoError(subtest, readError)
			lines := bytes.Split(bytes.TrimSpace(contents), []byte("\n"))
			require.Contains(subtest, string(lines[0]), testLogMessageConstant)
			require.Equal(subtest, testCase.expectStructured, json.Valid(lines[0]))
			require.Equal(subtest, testCase.expectDebugEntry, bytes.Contains(contents, []byte(testFilteredLogMessageConstant)))

			if testCase.expectStructured {
				var entry map[string]any
				require.NoError(subtest, json.Unmarshal(lines[0], &entry))
				require.EqualValues(subtest, os.Getpid(), entry["pid"])
				require.Equal(subtest, "warn", entry["level"])
			}
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	testCases := []struct {
		name          string
		level         utils.LogLevel
		format        utils.LogFormat
		expectedError string
	}{
		{name: "level", level: utils.LogLevel("verbose"), format: utils.LogFormatConsole, expectedError: "unsupported log level: verbose"},
		{name: "format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectedError: "unsupported log format: xml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.level, testCase.format, nil)
			require.EqualError(subtest, creationError, testCase.expectedError)
			require.Nil(subtest, logger)
		})
	}
}
