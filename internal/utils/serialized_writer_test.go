package utils_test

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/utils"
)

const testRecordLineConstant = "/work/alpha\tdefault\t3\n"

func TestSerializedWriterFlushesBufferedDestinations(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	writers := utils.NewSerializedWriters(bufio.NewWriterSize(destination, 4096))

	bytesWritten, writeError := writers[0].Write([]byte(testRecordLineConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testRecordLineConstant), bytesWritten)
	require.Equal(testInstance, testRecordLineConstant, destination.String())
}

func TestSerializedWritersShareOneLock(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	writers := utils.NewSerializedWriters(destination, destination, nil)

	var waitGroup sync.WaitGroup
	for writerIndex := 0; writerIndex < 2; writerIndex++ {
		waitGroup.Add(1)
		go func(writerIndex int) {
			defer waitGroup.Done()
			for lineIndex := 0; lineIndex < 50; lineIndex++ {
				_, writeError := fmt.Fprintf(writers[writerIndex], "writer %d line %d\n", writerIndex, lineIndex)
				require.NoError(testInstance, writeError)
			}
		}(writerIndex)
	}
	waitGroup.Wait()

	lines := strings.Split(strings.TrimSuffix(destination.String(), "\n"), "\n")
	require.Len(testInstance, lines, 100)
	for _, line := range lines {
		require.Regexp(testInstance, `^writer [01] line \d+$`, line)
	}

	bytesWritten, writeError := writers[2].Write([]byte(testRecordLineConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testRecordLineConstant), bytesWritten)
}
