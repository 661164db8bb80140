package pipeline

import "fmt"

// State is a stage of message enrichment. A run starts at StateEnqueued and
// ends at StateSuccess or StateError; there are no other terminal states.
type State string

const (
	StateEnqueued   State = "ENQUEUED"
	StateValidating State = "VALIDATING"
	StateEmbedding  State = "EMBEDDING"
	StateRetrieving State = "RETRIEVING"
	StateGenerating State = "GENERATING"
	StatePersisting State = "PERSISTING"
	StateSuccess    State = "SUCCESS"
	StateError      State = "ERROR"
)

func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateError
}

// transitions lists the legal next states for each state. Every
// non-terminal state may also fail directly to StateError.
var transitions = map[State][]State{
	StateEnqueued:   {StateValidating},
	StateValidating: {StateEmbedding},
	StateEmbedding:  {StateRetrieving},
	StateRetrieving: {StateGenerating},
	StateGenerating: {StatePersisting},
	StatePersisting: {StateSuccess},
	StateSuccess:    {},
	StateError:      {},
}

// Transition validates a state change and returns the new state. Moving out
// of a terminal state or skipping a stage is a programming error, surfaced
// rather than silently accepted.
func Transition(from, to State) (State, error) {
	allowed, ok := transitions[from]
	if !ok {
		return from, fmt.Errorf("unknown pipeline state %q", from)
	}
	if from.IsTerminal() {
		return from, fmt.Errorf("cannot leave terminal state %q", from)
	}
	if to == StateError {
		return to, nil
	}
	for _, next := range allowed {
		if next == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("illegal pipeline transition %q -> %q", from, to)
}
