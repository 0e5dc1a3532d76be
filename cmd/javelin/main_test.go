package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/javelin/internal/adapters/fs"
	"go.trai.ch/javelin/internal/adapters/unitcache"
	"go.trai.ch/javelin/internal/app"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, logger *mocks.MockLogger) *app.App {
	reader := mocks.NewMockClassReader(ctrl)
	return app.New(
		loader,
		mocks.NewMockSourceProvider(ctrl),
		mocks.NewMockSourceParser(ctrl),
		reader,
		unitcache.NewFactory(reader, logger),
		nil,
		fs.NewHasher(),
		logger,
	)
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).Times(1)

	application := newApp(ctrl, mockLoader, mockLogger)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	// Mock Load failing to simulate execution failure
	mockLoader.EXPECT().Load(".").Return(nil, errors.New("load failed"))

	exitCode := run(context.Background(), []string{"cache", "stats"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	blockCh := make(chan struct{})

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLoader.EXPECT().Load(gomock.Any()).DoAndReturn(func(_ string) (*domain.Config, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})

	mockLogger := mocks.NewMockLogger(ctrl)
	// Allow logging of the error when context is canceled
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	application := newApp(ctrl, mockLoader, mockLogger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"compile"}, io.Discard, func(context.Context) (*app.Components, func(), error) {
			return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
		})
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
