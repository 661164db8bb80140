package response

import (
	"context"
	"fmt"
	"strings"

	"neuro-chat-be/internal/pkg/logger"
	"neuro-chat-be/pkg/llm"
)

const (
	// GenerationApology is returned when the model call itself fails. A
	// conversational reply is always expected, so errors never propagate.
	GenerationApology = "I apologize, but I encountered an error while processing your message. Please try again."

	// shortCompletionFallback replaces completions that are empty or too
	// short to be a useful answer.
	shortCompletionFallback = "I understand your question. Let me provide you with a helpful response based on our conversation."

	systemPrompt = "You are a helpful chat assistant. " +
		"You are given a conversation history and a current user question. " +
		"You need to generate a response to the user question based on the conversation history. " +
		"The response should be formal and in the same language as the user question. " +
		"Avoid any other text or information in the response."

	maxContextPairs = 5
	minReplyLength  = 10
)

// ContextPair is one prior exchange used to ground the reply.
type ContextPair struct {
	UserMessage   string
	SystemMessage string
}

// Generator produces a grounded reply for a user message. It never returns
// an empty string.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate builds the grounded prompt from up to five context pairs and asks
// the model for a reply. Pairs with an empty prior system message carry no
// usable grounding and are skipped.
func (g *Generator) Generate(ctx context.Context, userMessage string, pairs []ContextPair) string {
	prompt := buildPrompt(userMessage, pairs)

	reply, err := g.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		g.logger.Error("response", "LLM generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return GenerationApology
	}

	reply = cleanReply(reply)
	if len(reply) < minReplyLength {
		return shortCompletionFallback
	}
	return reply
}

func buildPrompt(userMessage string, pairs []ContextPair) string {
	var sb strings.Builder

	usable := 0
	for _, pair := range pairs {
		if pair.SystemMessage == "" || pair.UserMessage == "" {
			continue
		}
		if usable == maxContextPairs {
			break
		}
		usable++
		if usable == 1 {
			sb.WriteString("Previous conversation context:\n")
		}
		fmt.Fprintf(&sb, "\nConversation %d:\nUser: %s\nAssistant: %s\n", usable, pair.UserMessage, pair.SystemMessage)
	}

	if usable > 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Current user question: %s\nAssistant response:", userMessage)
	return sb.String()
}

func cleanReply(reply string) string {
	reply = strings.TrimSpace(reply)

	// Models occasionally continue the transcript past their own turn.
	stopPatterns := []string{"\n\nUser:", "\nUser:", "\n\nCurrent user", "\nCurrent user"}
	for _, pattern := range stopPatterns {
		if idx := strings.Index(reply, pattern); idx >= 0 {
			reply = strings.TrimSpace(reply[:idx])
		}
	}
	return reply
}
