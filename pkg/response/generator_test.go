package response

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"neuro-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubLLM struct {
	reply       string
	err         error
	lastHistory []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.lastHistory = history
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestGenerateReturnsModelReply(t *testing.T) {
	model := &stubLLM{reply: "Here is a grounded answer for you."}
	g := NewGenerator(model, nopLogger{})

	got := g.Generate(context.Background(), "what is the plan?", nil)
	assert.Equal(t, model.reply, got)
}

func TestGenerateApologizesOnModelFailure(t *testing.T) {
	model := &stubLLM{err: errors.New("connection refused")}
	g := NewGenerator(model, nopLogger{})

	got := g.Generate(context.Background(), "what is the plan?", nil)
	assert.Equal(t, GenerationApology, got)
}

func TestGenerateFallsBackOnShortReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "empty reply", reply: ""},
		{name: "whitespace only", reply: "   \n"},
		{name: "too short", reply: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&stubLLM{reply: tt.reply}, nopLogger{})
			got := g.Generate(context.Background(), "question", nil)
			assert.Equal(t, shortCompletionFallback, got)
		})
	}
}

func TestGenerateNeverReturnsEmpty(t *testing.T) {
	for _, model := range []*stubLLM{
		{reply: ""},
		{err: errors.New("boom")},
		{reply: "a normal sized and useful reply"},
	} {
		g := NewGenerator(model, nopLogger{})
		assert.NotEmpty(t, g.Generate(context.Background(), "q", nil))
	}
}

func TestBuildPromptNumbersContextPairs(t *testing.T) {
	pairs := []ContextPair{
		{UserMessage: "first question", SystemMessage: "first answer"},
		{UserMessage: "second question", SystemMessage: "second answer"},
	}

	prompt := buildPrompt("current question", pairs)

	assert.Contains(t, prompt, "Previous conversation context:")
	assert.Contains(t, prompt, "Conversation 1:\nUser: first question\nAssistant: first answer")
	assert.Contains(t, prompt, "Conversation 2:\nUser: second question\nAssistant: second answer")
	assert.Contains(t, prompt, "Current user question: current question\nAssistant response:")
}

func TestBuildPromptSkipsUnansweredPairs(t *testing.T) {
	pairs := []ContextPair{
		{UserMessage: "pending question", SystemMessage: ""},
		{UserMessage: "answered question", SystemMessage: "the answer"},
	}

	prompt := buildPrompt("current", pairs)

	assert.NotContains(t, prompt, "pending question")
	assert.Contains(t, prompt, "Conversation 1:\nUser: answered question")
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := buildPrompt("hello", nil)
	assert.Equal(t, "Current user question: hello\nAssistant response:", prompt)
}

func TestBuildPromptCapsContextPairs(t *testing.T) {
	var pairs []ContextPair
	for i := 0; i < 8; i++ {
		pairs = append(pairs, ContextPair{
			UserMessage:   fmt.Sprintf("question %d", i),
			SystemMessage: fmt.Sprintf("answer %d", i),
		})
	}

	prompt := buildPrompt("current", pairs)

	assert.Contains(t, prompt, "Conversation 5:")
	assert.NotContains(t, prompt, "Conversation 6:")
}

func TestCleanReplyStripsTranscriptContinuation(t *testing.T) {
	got := cleanReply("A useful answer.\n\nUser: and another thing")
	assert.Equal(t, "A useful answer.", got)
}
