package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-pricing-ai/llm"
)

// AvailabilityProvider supplies the current availability picture for the
// configured listing so the assistant can answer calendar questions with
// real data
type AvailabilityProvider interface {
	AvailabilitySummary(ctx context.Context) (string, error)
}

// availabilityKeywords trigger a calendar lookup before the model answers
var availabilityKeywords = []string{"availab", "vacan", "open date", "open night", "free date", "gap", "unbooked", "calendar"}

// Request is one user turn in a conversation. An empty ConversationID
// starts a new conversation.
type Request struct {
	ConversationID string                `json:"conversation_id,omitempty"`
	Message        string                `json:"message"`
	Property       *llm.SelectedProperty `json:"property,omitempty"`
	Context        *llm.PropertyContext  `json:"property_context,omitempty"`
}

// Response is the assistant's reply plus the conversation ID to continue
// with
type Response struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// Service drives the host assistant: history management, context
// injection, and the model round-trip
type Service struct {
	llm          *llm.Client
	store        Store
	availability AvailabilityProvider
}

// NewService creates a chat service. availability may be nil when no
// listing data source is configured.
func NewService(llmClient *llm.Client, store Store, availability AvailabilityProvider) *Service {
	return &Service{
		llm:          llmClient,
		store:        store,
		availability: availability,
	}
}

// Chat runs one conversation turn and returns the full reply
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	conversationID, messages, err := s.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	s.recordTurn(ctx, conversationID, req.Message, reply)

	return &Response{ConversationID: conversationID, Reply: reply}, nil
}

// ChatStream runs one conversation turn, feeding reply chunks to the
// callback as they arrive. The assembled reply is persisted once the
// stream ends.
func (s *Service) ChatStream(ctx context.Context, req Request, callback llm.StreamCallback) (*Response, error) {
	conversationID, messages, err := s.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	var reply strings.Builder
	err = s.llm.ChatCompletionStream(ctx, messages, func(chunk string) error {
		reply.WriteString(chunk)
		return callback(chunk)
	})
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}

	s.recordTurn(ctx, conversationID, req.Message, reply.String())

	return &Response{ConversationID: conversationID, Reply: reply.String()}, nil
}

// Reset deletes a conversation's history
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, conversationID)
}

// prepareTurn resolves the conversation and assembles the message list
// for the model: system prompt, prior history, fresh data context when
// the question calls for it, and the user's message
func (s *Service) prepareTurn(ctx context.Context, req Request) (string, []llm.Message, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", nil, fmt.Errorf("message is required")
	}

	conversationID := req.ConversationID
	var history []llm.Message

	if conversationID == "" {
		conversationID = uuid.NewString()
	} else {
		var err error
		history, err = s.store.History(ctx, conversationID)
		if err != nil {
			return "", nil, err
		}
	}

	// New conversations get the system prompt seeded into the store so
	// later turns keep the same framing
	if len(history) == 0 {
		system := llm.Message{
			Role:    "system",
			Content: llm.ChatSystemPrompt(req.Property, req.Context, time.Now()),
		}
		if err := s.store.Append(ctx, conversationID, system); err != nil {
			return "", nil, err
		}
		history = []llm.Message{system}
	}

	messages := append([]llm.Message{}, history...)

	if s.availability != nil && wantsAvailability(req.Message) {
		if summary, err := s.availability.AvailabilitySummary(ctx); err == nil {
			messages = append(messages, llm.Message{
				Role:    "system",
				Content: "CURRENT AVAILABILITY DATA: " + summary,
			})
		}
	}

	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	return conversationID, messages, nil
}

// recordTurn persists the user message and assistant reply. Storage
// failures lose history, not the reply, so they are not surfaced.
func (s *Service) recordTurn(ctx context.Context, conversationID, userMessage, reply string) {
	_ = s.store.Append(ctx, conversationID,
		llm.Message{Role: "user", Content: userMessage},
		llm.Message{Role: "assistant", Content: reply},
	)
}

func wantsAvailability(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range availabilityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
