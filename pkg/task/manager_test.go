package task

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name     string
	startErr error

	mu      sync.Mutex
	started bool
	stopped bool
	stopSeq *[]string
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeTask) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	if f.stopSeq != nil {
		*f.stopSeq = append(*f.stopSeq, f.name)
	}
	return nil
}

func resetManager(t *testing.T) {
	t.Helper()
	defaultManager.mu.Lock()
	defaultManager.tasks = nil
	defaultManager.ctx = nil
	defaultManager.cancel = nil
	defaultManager.mu.Unlock()
	t.Cleanup(func() {
		defaultManager.mu.Lock()
		defaultManager.tasks = nil
		defaultManager.ctx = nil
		defaultManager.cancel = nil
		defaultManager.mu.Unlock()
	})
}

func TestStartAllStartsRegisteredTasks(t *testing.T) {
	resetManager(t)

	a := &fakeTask{name: "a"}
	b := &fakeTask{name: "b"}
	Register(a)
	Register(b)
	Register(nil)

	require.NoError(t, StartAll(context.Background()))
	assert.True(t, a.started)
	assert.True(t, b.started)
	assert.Equal(t, []string{"a", "b"}, Names())
}

func TestStartAllIsIdempotent(t *testing.T) {
	resetManager(t)

	Register(&fakeTask{name: "a"})
	require.NoError(t, StartAll(context.Background()))
	require.NoError(t, StartAll(context.Background()))
}

func TestStartAllWrapsFailureWithTaskName(t *testing.T) {
	resetManager(t)

	boom := errors.New("connection refused")
	Register(&fakeTask{name: "ok"})
	Register(&fakeTask{name: "broken", startErr: boom})

	err := StartAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestStopAllReverseOrder(t *testing.T) {
	resetManager(t)

	var seq []string
	a := &fakeTask{name: "a", stopSeq: &seq}
	b := &fakeTask{name: "b", stopSeq: &seq}
	c := &fakeTask{name: "c", stopSeq: &seq}
	Register(a)
	Register(b)
	Register(c)

	require.NoError(t, StartAll(context.Background()))
	StopAll()

	assert.Equal(t, []string{"c", "b", "a"}, seq)
	assert.True(t, a.stopped)

	// 停止后可以重新启动
	require.NoError(t, StartAll(context.Background()))
}
