package services

import (
	"context"
	"fmt"

	"github.com/askpeer/askpeer-be/internal/llm"
	"github.com/askpeer/askpeer-be/internal/models"
)

const assistantSystemInstruction = "You are a direct, high-efficiency AI assistant. No fluff."

// ChatServiceProvider defines the interface for the AI assistant.
type ChatServiceProvider interface {
	Respond(ctx context.Context, userID int64, userText string) (string, error)
	History(ctx context.Context, userID int64) ([]models.ChatTurn, error)
}

// ChatService assembles a bounded conversational context per user and talks
// to the language model gateway. Memory is nothing more than the ordered
// prompt: once the context exceeds the window, older turns are silently
// dropped.
type ChatService struct {
	store       ConversationStore
	gateway     llm.Provider
	contextRows int
	temperature float64
	maxTokens   int
}

// NewChatService creates a new ChatService. contextRows is the recent-turn
// window (two rows per exchange).
func NewChatService(store ConversationStore, gateway llm.Provider, contextRows int, temperature float64, maxTokens int) *ChatService {
	return &ChatService{
		store:       store,
		gateway:     gateway,
		contextRows: contextRows,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Respond runs one assistant exchange: load the recent context, assemble the
// prompt, call the gateway, and only then persist the user/assistant pair.
// On a gateway failure nothing is persisted and the caller sees ErrUpstream,
// so a client retry is idempotent at the storage layer.
func (s *ChatService) Respond(ctx context.Context, userID int64, userText string) (string, error) {
	recent, err := s.store.RecentTurns(ctx, userID, s.contextRows)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation context: %w", err)
	}

	prompt := BuildPrompt(assistantSystemInstruction, chronological(recent), userText)

	answer, err := s.gateway.Complete(ctx, prompt, llm.Options{
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	if err := s.store.AppendExchange(ctx, userID, userText, answer); err != nil {
		return "", fmt.Errorf("failed to persist exchange: %w", err)
	}
	return answer, nil
}

// History returns the user's recent turns in chronological order.
func (s *ChatService) History(ctx context.Context, userID int64) ([]models.ChatTurn, error) {
	recent, err := s.store.RecentTurns(ctx, userID, s.contextRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return chronological(recent), nil
}

// BuildPrompt produces the ordered message list for a completion call: the
// system instruction first, the chronological context, the new user message
// last.
func BuildPrompt(systemInstruction string, context []models.ChatTurn, newUserText string) []llm.Message {
	messages := make([]llm.Message, 0, len(context)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemInstruction})
	for _, t := range context {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: models.RoleUser, Content: newUserText})
	return messages
}

// PairExchanges derives user/assistant pairs from a chronological turn
// sequence. A trailing or mismatched user turn yields an exchange with an
// empty model side; stray assistant turns are skipped. The append contract
// makes both impossible, but the pairing stays defensive.
func PairExchanges(turns []models.ChatTurn) []models.Exchange {
	var exchanges []models.Exchange
	for i := 0; i < len(turns); i++ {
		if turns[i].Role != models.RoleUser {
			continue
		}
		ex := models.Exchange{Human: turns[i].Content}
		if i+1 < len(turns) && turns[i+1].Role == models.RoleAssistant {
			ex.Model = turns[i+1].Content
			i++
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges
}

// chronological reverses a most-recent-first slice into oldest-first order.
func chronological(turns []models.ChatTurn) []models.ChatTurn {
	out := make([]models.ChatTurn, len(turns))
	for i, t := range turns {
		out[len(turns)-1-i] = t
	}
	return out
}
