package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/event"
)

func TestMemoryBusSubscribeByJob(t *testing.T) {
	b := NewMemoryBus()
	ctx := context.Background()

	var gotA, gotB []event.Event
	b.Subscribe("job-a", func(e event.Event) { gotA = append(gotA, e) })
	b.Subscribe("job-b", func(e event.Event) { gotB = append(gotB, e) })

	require.NoError(t, b.Publish(ctx, event.ChunkEvent{Job: "job-a", ChunkKey: "job-a/chunks/output0.ts"}))
	require.NoError(t, b.Publish(ctx, event.MetaEvent{Job: "job-b", TotalSegments: 3}))

	require.Len(t, gotA, 1)
	require.Len(t, gotB, 1)
	assert.Equal(t, event.TypeChunk, gotA[0].Type())
	assert.Equal(t, event.TypeMeta, gotB[0].Type())
}

func TestMemoryBusSubscribeAll(t *testing.T) {
	b := NewMemoryBus()
	ctx := context.Background()

	var got []event.Event
	b.SubscribeAll(func(e event.Event) { got = append(got, e) })

	require.NoError(t, b.Publish(ctx, event.ChunkEvent{Job: "job-a", ChunkKey: "job-a/chunks/output0.ts"}))
	require.NoError(t, b.Publish(ctx, event.FailedEvent{Job: "job-b", Reason: "boom"}))

	assert.Len(t, got, 2)
}

func TestMemoryBusCancel(t *testing.T) {
	b := NewMemoryBus()
	ctx := context.Background()

	count := 0
	sub := b.Subscribe("job-a", func(e event.Event) { count++ })

	require.NoError(t, b.Publish(ctx, event.ChunkEvent{Job: "job-a", ChunkKey: "k"}))
	sub.Cancel()
	sub.Cancel() // 幂等
	require.NoError(t, b.Publish(ctx, event.ChunkEvent{Job: "job-a", ChunkKey: "k2"}))

	assert.Equal(t, 1, count)
}

func TestMemoryBusPublishValidation(t *testing.T) {
	b := NewMemoryBus()

	err := b.Publish(context.Background(), nil)
	assert.Error(t, err)

	err = b.Publish(context.Background(), event.ChunkEvent{ChunkKey: "k"})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err = b.Publish(cancelled, event.ChunkEvent{Job: "job-a", ChunkKey: "k"})
	assert.Error(t, err)
}
