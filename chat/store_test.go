package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-pricing-ai/llm"
)

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	require.NoError(t, store.Append(ctx, "c1",
		llm.Message{Role: "system", Content: "prompt"},
		llm.Message{Role: "user", Content: "hi"},
	))
	require.NoError(t, store.Append(ctx, "c1", llm.Message{Role: "assistant", Content: "hello"}))

	history, err := store.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, "hello", history[2].Content)
}

func TestMemoryStoreUnknownConversation(t *testing.T) {
	store := NewMemoryStore(10)
	history, err := store.History(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	require.NoError(t, store.Append(ctx, "c1", llm.Message{Role: "user", Content: "hi"}))
	require.NoError(t, store.Delete(ctx, "c1"))

	history, err := store.History(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreRetention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(4)

	require.NoError(t, store.Append(ctx, "c1", llm.Message{Role: "system", Content: "prompt"}))
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "c1",
			llm.Message{Role: "user", Content: fmt.Sprintf("q%d", i)},
			llm.Message{Role: "assistant", Content: fmt.Sprintf("a%d", i)},
		))
	}

	history, err := store.History(ctx, "c1")
	require.NoError(t, err)

	// System message survives trimming; only the newest turns remain
	require.Len(t, history, 5)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, "q9", history[3].Content)
	assert.Equal(t, "a9", history[4].Content)
}

func TestTrimHistoryWithoutSystemMessage(t *testing.T) {
	messages := []llm.Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
	}

	trimmed := trimHistory(messages, 2)
	require.Len(t, trimmed, 2)
	assert.Equal(t, "two", trimmed[0].Content)
	assert.Equal(t, "three", trimmed[1].Content)
}

func TestTrimHistoryNoLimit(t *testing.T) {
	messages := []llm.Message{{Role: "user", Content: "one"}}
	assert.Len(t, trimHistory(messages, 0), 1)
}

func TestWantsAvailability(t *testing.T) {
	assert.True(t, wantsAvailability("What's my availability in August?"))
	assert.True(t, wantsAvailability("Any open dates next month?"))
	assert.True(t, wantsAvailability("show me the CALENDAR"))
	assert.True(t, wantsAvailability("which nights are unbooked"))

	assert.False(t, wantsAvailability("How should I price July 4th?"))
	assert.False(t, wantsAvailability("raise my weekend rates"))
}

func TestMemoryStoreHistoryIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	require.NoError(t, store.Append(ctx, "c1", llm.Message{Role: "user", Content: "hi"}))

	history, err := store.History(ctx, "c1")
	require.NoError(t, err)
	history[0].Content = "mutated"

	fresh, err := store.History(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hi", fresh[0].Content)
}
