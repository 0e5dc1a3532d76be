// Package telemetry provides adapters for collecting and processing telemetry data.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush interval (50ms) if not specified.
	DefaultTimeLimit = 50 * time.Millisecond
)

// BatchProcessor buffers span output and hands it on in whole lines once a size limit
// or time limit is reached. A trailing partial line waits for the next write, or for
// Close. It is thread-safe.
type BatchProcessor struct {
	// configuration
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	// synchronization
	mu     sync.Mutex
	buffer *bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewBatchProcessor returns a new BatchProcessor.
// sizeLimit: max bytes before automatic flush.
// timeLimit: max time before automatic flush.
// onFlush: callback triggered with one or more complete lines.
// Call Close() to stop the background ticker.
func NewBatchProcessor(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	bp := &BatchProcessor{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		buffer:    new(bytes.Buffer),
		stopCh:    make(chan struct{}),
	}

	bp.ticker = time.NewTicker(timeLimit)
	go bp.run()

	return bp
}

// Write writes data to the buffer.
// If the buffer exceeds sizeLimit, it triggers a Flush.
func (bp *BatchProcessor) Write(p []byte) (n int, err error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, errors.New("BatchProcessor is closed")
	}

	n, err = bp.buffer.Write(p)
	if err != nil {
		return n, err
	}

	if bp.buffer.Len() >= bp.sizeLimit {
		// A single line longer than the limit is flushed as is.
		bp.flushLocked(bytes.LastIndexByte(bp.buffer.Bytes(), '\n') < 0)
		bp.ticker.Reset(bp.timeLimit)
	}

	return n, nil
}

// Flush forces the complete lines in the buffer to be sent to the callback.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return
	}
	bp.flushLocked(false)
}

// Close stops the background flusher and flushes everything, partial line included.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}

	bp.closed = true
	close(bp.stopCh)
	bp.flushLocked(true)
	return nil
}

func (bp *BatchProcessor) run() {
	for {
		select {
		case <-bp.ticker.C:
			bp.Flush()
		case <-bp.stopCh:
			bp.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held. Unless all is set only the data up to the
// last newline is flushed.
func (bp *BatchProcessor) flushLocked(all bool) {
	buf := bp.buffer.Bytes()
	end := len(buf)
	if !all {
		end = bytes.LastIndexByte(buf, '\n') + 1
	}
	if end == 0 {
		return
	}

	data := make([]byte, end)
	copy(data, buf[:end])
	bp.buffer.Next(end)

	// The callback runs under the lock so flushes stay ordered.
	if bp.onFlush != nil {
		bp.onFlush(data)
	}
}
