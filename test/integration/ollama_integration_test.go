package integration

import (
	"context"
	"net"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running Ollama with the model pulled. Gated on OLLAMA_URL so CI
// without a model server skips.
func ollamaProviderOrSkip(t *testing.T) *ollama.OllamaProvider {
	t.Helper()

	baseURL := os.Getenv("OLLAMA_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_URL not set")
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3.2"
	}

	// Fail fast when nothing listens there.
	if u, err := url.Parse(baseURL); err == nil {
		conn, err := net.DialTimeout("tcp", u.Host, 2*time.Second)
		if err != nil {
			t.Skipf("Skipping integration test: Ollama not reachable at %s", baseURL)
		}
		conn.Close()
	}

	return ollama.NewOllamaProvider(baseURL, model)
}

func TestOllamaChat(t *testing.T) {
	provider := ollamaProviderOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := provider.Chat(ctx, []llm.Message{
		{Role: constant.OllamaRoleUser, Content: "Reply with the single word: pong"},
	}, llm.WithMaxTokens(16))
	require.NoError(t, err)
	assert.NotEmpty(t, res)
	t.Logf("Model replied: %s", res)
}

func TestOllamaChatStream(t *testing.T) {
	provider := ollamaProviderOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var deltas int
	result, err := provider.ChatStream(ctx, []llm.Message{
		{Role: constant.OllamaRoleUser, Content: "Count from 1 to 5."},
	}, func(delta string) error {
		deltas++
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, deltas, 1, "expected multiple stream fragments")
	assert.NotEmpty(t, result.Content)
	assert.NotEmpty(t, result.Model)
	t.Logf("Streamed %d fragments, eval_count=%d", deltas, result.EvalCount)
}

func TestOllamaTitlePrompt(t *testing.T) {
	provider := ollamaProviderOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	title, err := provider.Chat(ctx, []llm.Message{
		{Role: constant.OllamaRoleSystem, Content: constant.TitleSystemPrompt},
		{Role: constant.OllamaRoleUser, Content: "How do solar panels convert sunlight into electricity?"},
	}, llm.WithMaxTokens(32))
	require.NoError(t, err)

	title = strings.TrimSpace(title)
	assert.NotEmpty(t, title)
	t.Logf("Generated title: %q", title)
}
