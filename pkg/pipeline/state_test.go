package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		want    State
		wantErr bool
	}{
		{name: "enqueued to validating", from: StateEnqueued, to: StateValidating, want: StateValidating},
		{name: "validating to embedding", from: StateValidating, to: StateEmbedding, want: StateEmbedding},
		{name: "embedding to retrieving", from: StateEmbedding, to: StateRetrieving, want: StateRetrieving},
		{name: "retrieving to generating", from: StateRetrieving, to: StateGenerating, want: StateGenerating},
		{name: "generating to persisting", from: StateGenerating, to: StatePersisting, want: StatePersisting},
		{name: "persisting to success", from: StatePersisting, to: StateSuccess, want: StateSuccess},
		{name: "any intermediate state may fail", from: StateEmbedding, to: StateError, want: StateError},
		{name: "enqueued may fail", from: StateEnqueued, to: StateError, want: StateError},
		{name: "skipping a stage is rejected", from: StateValidating, to: StateGenerating, want: StateValidating, wantErr: true},
		{name: "going backwards is rejected", from: StateGenerating, to: StateEmbedding, want: StateGenerating, wantErr: true},
		{name: "leaving success is rejected", from: StateSuccess, to: StateValidating, want: StateSuccess, wantErr: true},
		{name: "leaving error is rejected", from: StateError, to: StateEnqueued, want: StateError, wantErr: true},
		{name: "unknown state is rejected", from: State("BOGUS"), to: StateValidating, want: State("BOGUS"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateIsTerminal(t *testing.T) {
	assert.True(t, StateSuccess.IsTerminal())
	assert.True(t, StateError.IsTerminal())
	assert.False(t, StateEnqueued.IsTerminal())
	assert.False(t, StatePersisting.IsTerminal())
}
