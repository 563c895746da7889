package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeChunkEvent(t *testing.T) {
	original := ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output0.ts"}

	data, err := Encode(original)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "job-1", wire["jobId"])
	assert.Equal(t, "chunk", wire["type"])
	assert.Equal(t, "job-1/chunks/output0.ts", wire["taskId"])

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeDecodeMetaEvent(t *testing.T) {
	original := MetaEvent{Job: "job-1", TotalSegments: 17}

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeDecodeProgressEvent(t *testing.T) {
	original := ProgressEvent{Job: "job-1", CompletedTasks: 9}

	data, err := Encode(original)
	require.NoError(t, err)

	// 线上字段名为completedSegments
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, float64(9), wire["completedSegments"])
	assert.NotContains(t, wire, "completedTasks")

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeDecodeFailedEvent(t *testing.T) {
	original := FailedEvent{Job: "job-1", Reason: "encoder crashed", MachineID: "m1", ContainerID: "c1"}

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeRejectsInvalidEvents(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)

	_, err = Encode(ChunkEvent{ChunkKey: "x/chunks/output0.ts"})
	assert.Error(t, err)
}

func TestDecodeRejectsBlankJobID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"chunk","taskId":"x/chunks/output0.ts"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"jobId":"","type":"meta"}`))
	assert.Error(t, err)
}

func TestDecodeChunkRequiresTaskID(t *testing.T) {
	_, err := Decode([]byte(`{"jobId":"job-1","type":"chunk"}`))
	assert.Error(t, err)
}

func TestDecodeUnknownType(t *testing.T) {
	// 未知类型但携带taskId的消息按切片事件处理
	decoded, err := Decode([]byte(`{"jobId":"job-1","type":"mystery","taskId":"job-1/chunks/output7.ts"}`))
	require.NoError(t, err)
	chunk, ok := decoded.(ChunkEvent)
	require.True(t, ok)
	assert.Equal(t, "job-1/chunks/output7.ts", chunk.ChunkKey)

	_, err = Decode([]byte(`{"jobId":"job-1","type":"mystery"}`))
	assert.Error(t, err)
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)
}
