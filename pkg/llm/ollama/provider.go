package ollama

import (
	"ai-chat-be/pkg/llm"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model         string        `json:"model"`
	Message       ollamaMessage `json:"message"`
	Done          bool          `json:"done"`
	EvalCount     int           `json:"eval_count,omitempty"`
	TotalDuration int64         `json:"total_duration,omitempty"` // nanoseconds
}

// --- Interface Implementation ---

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := o.doChat(ctx, history, false, opts...)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return ollamaResp.Message.Content, nil
}

// ChatStream reads Ollama's NDJSON stream and forwards each fragment to
// onDelta as it arrives. Nothing is retained past the final "done" chunk
// beyond the accumulated content and the reported stats.
func (o *OllamaProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta func(delta string) error, opts ...llm.Option) (*llm.StreamResult, error) {
	resp, err := o.doChat(ctx, history, true, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &llm.StreamResult{}
	var content bytes.Buffer

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("unmarshal stream chunk: %w", err)
		}

		if chunk.Message.Content != "" {
			content.WriteString(chunk.Message.Content)
			if err := onDelta(chunk.Message.Content); err != nil {
				return nil, err
			}
		}

		if chunk.Done {
			result.Model = chunk.Model
			result.EvalCount = chunk.EvalCount
			result.TotalDuration = time.Duration(chunk.TotalDuration)
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	result.Content = content.String()
	return result, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// doChat performs the HTTP call shared by the blocking and streaming paths
// and returns the raw response for the caller to consume.
func (o *OllamaProvider) doChat(ctx context.Context, history []llm.Message, stream bool, opts ...llm.Option) (*http.Response, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		ollamaMessages[i] = ollamaMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	// 3. Prepare Payload
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   stream,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}

	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// 4. Send Request
	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}
