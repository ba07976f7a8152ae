package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const anthropicVersion = "bedrock-2023-05-31"

// runtimeAPI is the subset of *bedrockruntime.Client used by RuntimeClient.
type runtimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// RuntimeClient sends single-turn prompts to Claude models on Bedrock.
// It implements BedrockClientInterface and returns the raw response body.
type RuntimeClient struct {
	api       runtimeAPI
	timeout   time.Duration
	maxTokens int
}

// NewRuntimeClient creates a RuntimeClient.
func NewRuntimeClient(api runtimeAPI, timeout time.Duration, maxTokens int) *RuntimeClient {
	return &RuntimeClient{api: api, timeout: timeout, maxTokens: maxTokens}
}

// InvokeModel sends prompt as a single user message.
func (c *RuntimeClient) InvokeModel(modelID string, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        c.maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", modelID, err)
	}
	return string(out.Body), nil
}
