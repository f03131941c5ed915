package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"clientflow/internal/config"
	"clientflow/internal/logger"
	"clientflow/internal/stream"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterProvider implements Provider using the OpenRouter chat
// completions API with streaming enabled.
type OpenRouterProvider struct {
	config *config.LLMConfig
	client *http.Client
}

// NewOpenRouterProvider creates a provider from LLM configuration.
func NewOpenRouterProvider(llmConfig *config.LLMConfig) *OpenRouterProvider {
	return &OpenRouterProvider{
		config: llmConfig,
		client: &http.Client{},
	}
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message apiMessage `json:"message"`
		Delta   apiMessage `json:"delta"`
	} `json:"choices"`
}

// DefaultModel returns the configured default model identifier.
func (p *OpenRouterProvider) DefaultModel() string {
	return p.config.DefaultModel
}

// StreamDraft requests one response variant and streams its fragments.
// The final chunk carries the variant's metadata.
func (p *OpenRouterProvider) StreamDraft(ctx context.Context, req DraftRequest) (<-chan StreamChunk, error) {
	if p.config.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not configured")
	}

	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}

	logger.Log.WithFields(logrus.Fields{
		"model":        model,
		"tone":         req.Tone,
		"message_type": req.Context.MessageType,
	}).Info("Calling OpenRouter API (streaming)")

	body := apiRequest{
		Model: model,
		Messages: []apiMessage{
			{Role: "system", Content: buildSystemPrompt(req)},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		Stream: true,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.OpenRouterAPIKey)
	httpReq.Header.Set("X-Title", "ClientFlow")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	chunks := make(chan StreamChunk)
	go func() {
		defer resp.Body.Close()
		defer close(chunks)

		var full strings.Builder

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || line == "data: [DONE]" {
				continue
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var streamResp apiResponse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &streamResp); err != nil {
				logger.Log.WithError(err).Warn("Error parsing stream chunk")
				continue
			}
			if len(streamResp.Choices) > 0 && streamResp.Choices[0].Delta.Content != "" {
				content := streamResp.Choices[0].Delta.Content
				full.WriteString(content)
				select {
				case chunks <- StreamChunk{Content: content}:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case chunks <- StreamChunk{Err: fmt.Errorf("stream read error: %w", err)}:
			case <-ctx.Done():
			}
			return
		}
		if full.Len() == 0 {
			select {
			case chunks <- StreamChunk{Err: fmt.Errorf("empty response from model")}:
			case <-ctx.Done():
			}
			return
		}

		metadata := deriveMetadata(req, full.String())
		select {
		case chunks <- StreamChunk{Metadata: &metadata}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}

// Confidence baseline per tone; refinement passes are scored slightly
// higher because they start from a response the user already picked.
var toneConfidence = map[string]float64{
	"professional": 0.9,
	"friendly":     0.85,
	"direct":       0.8,
}

func deriveMetadata(req DraftRequest, text string) stream.VariantMetadata {
	confidence, ok := toneConfidence[req.Tone]
	if !ok {
		confidence = 0.75
	}
	if req.RefinementInstructions != "" {
		confidence += 0.05
	}
	if confidence > 1 {
		confidence = 1
	}

	length := "medium"
	switch n := utf8.RuneCountInString(text); {
	case n < 300:
		length = "short"
	case n > 800:
		length = "long"
	}

	return stream.VariantMetadata{
		Tone:       req.Tone,
		Length:     length,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("A %s reply suited to a %s message at the %s stage.", req.Tone, req.Context.MessageType, req.Context.RelationshipStage),
	}
}
