package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/jawab/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}

func TestMarshalUnmarshalKnowledgeEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	entry := &core.KnowledgeEntry{
		Id:                 7,
		Question:           "स्विच की कीमत क्या है",
		NormalizedQuestion: "switch ki price kya hai",
		Answer:             "Switch ka price 50-200 rupees tak hai.",
		Domain:             "electrical",
		Confidence:         0.9,
		UsageCount:         12,
		CreatedAt:          now.Add(-time.Hour),
		UpdatedAt:          now,
		ValidationStatus:   "verified",
	}

	data := MarshalKnowledgeEntry(entry)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalKnowledgeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestUnmarshalKnowledgeEntry_Truncated(t *testing.T) {
	entry := &core.KnowledgeEntry{
		Question:           "wire ka rate",
		NormalizedQuestion: "wire ka price",
		Answer:             "45-80 rupees per meter",
		Domain:             "electrical",
	}
	data := MarshalKnowledgeEntry(entry)

	_, err := UnmarshalKnowledgeEntry(data[:len(data)/2])
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}

func TestMarshalUnmarshalVector(t *testing.T) {
	vec := []float32{0.25, -0.5, 1, 0}
	data := MarshalVector(vec)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalVector(data)
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)
}

func TestUnmarshalVector_Truncated(t *testing.T) {
	data := MarshalVector([]float32{0.25, -0.5, 1})

	_, err := UnmarshalVector(data[:1])
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}
