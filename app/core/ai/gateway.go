// Package ai wraps the hosted chat-completion providers behind one Chat call.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	config "github.com/zyzzzz-123/TECHIN510-project/app/configs"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	ErrNoProviderAvailable   = errors.New("no ai provider available")
	ErrProviderRequestFailed = errors.New("ai provider request failed")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatFunc matches Gateway.Chat so callers can be tested with a fake.
type ChatFunc func(ctx context.Context, messages []Message, provider string, systemPrompt string) (string, error)

type Gateway struct {
	cfg           func() config.AIConfig
	httpClient    *http.Client
	geminiBaseURL string
}

func NewGateway(cfg func() config.AIConfig) *Gateway {
	return &Gateway{
		cfg:           cfg,
		httpClient:    &http.Client{},
		geminiBaseURL: "https://generativelanguage.googleapis.com",
	}
}

// Chat sends the conversation to the requested provider and returns the raw
// reply text. An empty provider means the configured default; a provider whose
// credential is missing falls back to the other one. The outbound call gets a
// fixed timeout and is never retried.
func (g *Gateway) Chat(ctx context.Context, messages []Message, provider string, systemPrompt string) (string, error) {
	cfg := g.cfg()

	selected, err := resolveProvider(cfg, provider)
	if err != nil {
		return "", err
	}

	if systemPrompt != "" && (len(messages) == 0 || messages[0].Role != "system") {
		messages = append([]Message{{Role: "system", Content: systemPrompt}}, messages...)
	}

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reply string
	switch selected {
	case ProviderOpenAI:
		reply, err = g.chatOpenAI(callCtx, cfg, messages)
	case ProviderGemini:
		reply, err = g.chatGemini(callCtx, cfg, messages)
	default:
		return "", fmt.Errorf("%w: unsupported provider %q", ErrProviderRequestFailed, selected)
	}
	if err != nil {
		logger.Error("AI request to %s failed: %v", selected, err)
		return "", fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}
	return reply, nil
}

// resolveProvider picks a provider with a configured credential, falling back
// to the alternative when the requested one has none.
func resolveProvider(cfg config.AIConfig, requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		requested = strings.ToLower(strings.TrimSpace(cfg.DefaultProvider))
	}

	openaiAvailable := strings.TrimSpace(cfg.OpenAIKey) != ""
	geminiAvailable := strings.TrimSpace(cfg.GeminiKey) != ""

	switch requested {
	case ProviderOpenAI:
		if openaiAvailable {
			return ProviderOpenAI, nil
		}
		if geminiAvailable {
			logger.Warn("OpenAI API key not set, falling back to Gemini")
			return ProviderGemini, nil
		}
	case ProviderGemini:
		if geminiAvailable {
			return ProviderGemini, nil
		}
		if openaiAvailable {
			logger.Warn("Gemini API key not set, falling back to OpenAI")
			return ProviderOpenAI, nil
		}
	default:
		if openaiAvailable {
			return ProviderOpenAI, nil
		}
		if geminiAvailable {
			return ProviderGemini, nil
		}
	}
	return "", ErrNoProviderAvailable
}

// GoalAssistantSystemPrompt is the instruction set used for plain chat turns.
func GoalAssistantSystemPrompt() string {
	return "You are a helpful goal planning assistant. " +
		"When the user wants to add, update, or delete a todo/task, always reply with a JSON object in the following format: " +
		`{"action": "add_task|update_task|delete_task", "task": { ... }, "confirmation_prompt": "..."}. ` +
		"The confirmation_prompt should be a clear question for the user to confirm or cancel the action. " +
		"If the user's message is not a task operation, reply as usual. " +
		"Remember the full conversation history until the user confirms or cancels an action."
}
