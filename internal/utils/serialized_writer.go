package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// SerializedWriter forwards each write under a lock shared with its sibling writers.
// Buffered destinations are flushed before the lock is released.
type SerializedWriter struct {
	destination io.Writer
	lock        *sync.Mutex
}

// NewSerializedWriters wraps every destination with one shared lock so output and error lines do not interleave.
// Nil destinations discard their writes.
func NewSerializedWriters(destinations ...io.Writer) []io.Writer {
	sharedLock := &sync.Mutex{}
	wrapped := make([]io.Writer, len(destinations))
	for index, destination := range destinations {
		if destination == nil {
			destination = io.Discard
		}
		wrapped[index] = &SerializedWriter{destination: destination, lock: sharedLock}
	}
	return wrapped
}

// Write delegates to the destination and flushes it when it buffers.
func (writer *SerializedWriter) Write(data []byte) (int, error) {
	writer.lock.Lock()
	defer writer.lock.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedDestination, buffers := writer.destination.(flusher); buffers {
		return bytesWritten, bufferedDestination.Flush()
	}
	return bytesWritten, nil
}
