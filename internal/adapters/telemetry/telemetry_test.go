package telemetry_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/telemetry"
)

type flushRecorder struct {
	mu      sync.Mutex
	flushes []string
}

func (r *flushRecorder) onFlush(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, string(data))
}

func (r *flushRecorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.flushes...)
}

func TestBatchProcessor_HoldsPartialLine(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(0, time.Hour, rec.onFlush)

	_, err := bp.Write([]byte("first\nsec"))
	require.NoError(t, err)
	bp.Flush()
	assert.Equal(t, []string{"first\n"}, rec.get())

	_, err = bp.Write([]byte("ond\n"))
	require.NoError(t, err)
	bp.Flush()
	assert.Equal(t, []string{"first\n", "second\n"}, rec.get())
}

func TestBatchProcessor_CloseFlushesRemainder(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(0, time.Hour, rec.onFlush)

	_, err := bp.Write([]byte("tail without newline"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, []string{"tail without newline"}, rec.get())

	_, err = bp.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, bp.Close())
}

func TestBatchProcessor_SizeLimit(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(8, time.Hour, rec.onFlush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("abc\ndefgh"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abc\n"}, rec.get())

	// A line longer than the limit goes out whole.
	_, err = bp.Write([]byte("ijklmnop"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abc\n", "defghijklmnop"}, rec.get())
}

func TestBatchProcessor_TimeLimit(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(0, 10*time.Millisecond, rec.onFlush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("tick\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(rec.get()) == 1
	}, time.Second, 5*time.Millisecond)
}
