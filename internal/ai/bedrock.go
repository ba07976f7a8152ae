// Package ai provides AI integration for puzzle completion messages.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BedrockClientInterface defines the interface for Bedrock client.
type BedrockClientInterface interface {
	InvokeModel(modelID string, prompt string) (string, error)
}

// SolveSummary describes a completed puzzle.
type SolveSummary struct {
	Pieces   int
	Solves   int // including this one
	Duration time.Duration
}

// BedrockClient wraps the Bedrock client for completion messages.
type BedrockClient struct {
	client          BedrockClientInterface
	region          string
	fallbackEnabled bool
}

// ClaudeResponse represents the response from Claude.
type ClaudeResponse struct {
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a content block in Claude's response.
type ContentBlock struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// Claude 3 Haiku model ID
const claudeHaikuModelID = "anthropic.claude-3-haiku-20240307-v1:0"

// NewBedrockClient creates a new BedrockClient.
func NewBedrockClient(client BedrockClientInterface, region string) *BedrockClient {
	return &BedrockClient{
		client:          client,
		region:          region,
		fallbackEnabled: false,
	}
}

// EnableFallback enables or disables fallback mode.
// When enabled, returns a fallback message instead of error when API fails.
func (c *BedrockClient) EnableFallback(enabled bool) {
	c.fallbackEnabled = enabled
}

// Congratulate asks Claude for a short message celebrating a solved puzzle.
func (c *BedrockClient) Congratulate(summary SolveSummary) (string, error) {
	if c.client == nil {
		if c.fallbackEnabled {
			return FallbackMessage(summary), nil
		}
		return "", errors.New("bedrock client is not configured")
	}

	response, err := c.client.InvokeModel(claudeHaikuModelID, c.buildPrompt(summary))
	if err != nil {
		if c.fallbackEnabled {
			return FallbackMessage(summary), nil
		}
		return "", fmt.Errorf("failed to invoke Bedrock: %w", err)
	}

	result, err := c.parseResponse(response)
	if err != nil {
		if c.fallbackEnabled {
			return FallbackMessage(summary), nil
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

// buildPrompt creates the prompt for the completion message.
func (c *BedrockClient) buildPrompt(summary SolveSummary) string {
	return fmt.Sprintf(`あなたはジグソーパズルゲームの陽気な司会者です。
プレイヤーがパズルを完成させました。短くお祝いのメッセージを伝えてください。

ピース数: %d
完成回数: %d回目
所要時間: %d秒

1-2文の日本語で回答してください。`, summary.Pieces, summary.Solves, int(summary.Duration.Seconds()))
}

// parseResponse parses the Claude response JSON.
func (c *BedrockClient) parseResponse(response string) (string, error) {
	var claudeResp ClaudeResponse
	if err := json.Unmarshal([]byte(response), &claudeResp); err != nil {
		return "", err
	}

	if len(claudeResp.Content) == 0 {
		return "", errors.New("empty content in response")
	}

	text := strings.TrimSpace(claudeResp.Content[0].Text)
	if text == "" {
		return "", errors.New("empty text in response")
	}
	return text, nil
}

// FallbackMessage returns the completion message used when Bedrock is unavailable.
func FallbackMessage(summary SolveSummary) string {
	if summary.Solves > 1 {
		return fmt.Sprintf("おめでとうございます！%d回目の完成です！", summary.Solves)
	}
	if summary.Duration > 0 && summary.Duration < time.Minute {
		return "おめでとうございます！あっという間の完成です！"
	}
	return "おめでとうございます！パズル完成です！"
}
