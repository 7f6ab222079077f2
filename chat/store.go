// Package chat keeps multi-turn conversations for the host assistant:
// history storage with bounded retention and the service that drives the
// model.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-pricing-ai/cache"
	"rental-pricing-ai/llm"
)

// conversationTTL bounds how long an idle conversation is kept
const conversationTTL = 24 * time.Hour

// Store persists conversation history by conversation ID
type Store interface {
	// History returns the stored messages for a conversation, oldest
	// first. An unknown ID yields an empty history, not an error.
	History(ctx context.Context, conversationID string) ([]llm.Message, error)
	// Append adds messages to a conversation, trimming the oldest
	// non-system messages beyond the retention limit
	Append(ctx context.Context, conversationID string, messages ...llm.Message) error
	// Delete removes a conversation
	Delete(ctx context.Context, conversationID string) error
}

// trimHistory keeps the system message (always first when present) plus
// the most recent maxMessages turns
func trimHistory(messages []llm.Message, maxMessages int) []llm.Message {
	if maxMessages <= 0 || len(messages) == 0 {
		return messages
	}

	var system []llm.Message
	rest := messages
	if messages[0].Role == "system" {
		system = messages[:1]
		rest = messages[1:]
	}

	if len(rest) > maxMessages {
		rest = rest[len(rest)-maxMessages:]
	}

	return append(append([]llm.Message{}, system...), rest...)
}

// MemoryStore keeps conversations in process memory. Used when Redis is
// not configured; history is lost on restart.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]llm.Message
	maxMessages   int
}

// NewMemoryStore creates an in-memory conversation store
func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]llm.Message),
		maxMessages:   maxMessages,
	}
}

func (s *MemoryStore) History(ctx context.Context, conversationID string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.conversations[conversationID]
	out := make([]llm.Message, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, conversationID string, messages ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.conversations[conversationID], messages...)
	s.conversations[conversationID] = trimHistory(history, s.maxMessages)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, conversationID)
	return nil
}

// RedisStore keeps conversations in Redis so history survives restarts
// and is shared across instances
type RedisStore struct {
	redis       *cache.RedisClient
	maxMessages int
}

// NewRedisStore creates a Redis-backed conversation store
func NewRedisStore(redis *cache.RedisClient, maxMessages int) *RedisStore {
	return &RedisStore{
		redis:       redis,
		maxMessages: maxMessages,
	}
}

func conversationKey(conversationID string) string {
	return fmt.Sprintf("chat:conversation:%s", conversationID)
}

func (s *RedisStore) History(ctx context.Context, conversationID string) ([]llm.Message, error) {
	var messages []llm.Message
	err := s.redis.Get(ctx, conversationKey(conversationID), &messages)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

func (s *RedisStore) Append(ctx context.Context, conversationID string, messages ...llm.Message) error {
	history, err := s.History(ctx, conversationID)
	if err != nil {
		return err
	}

	history = trimHistory(append(history, messages...), s.maxMessages)
	return s.redis.Set(ctx, conversationKey(conversationID), history, conversationTTL)
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	return s.redis.Delete(ctx, conversationKey(conversationID))
}
