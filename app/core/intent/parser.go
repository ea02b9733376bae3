package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

const parserSystemPrompt = `You are a task management assistant.
If the user wants to add, update or delete a task, respond with a JSON object of this shape:
{"action": "add_task|update_task|delete_task|query_task", "task": { task attributes }, "confirmation_prompt": "..."}

For add_task: include text (required), due_date (ISO format, optional), type (todo/goal, optional)
For update_task: include id (required), plus any of text, due_date, status, type
For delete_task: include id (required)
For query_task: include filters such as status (todo/done/all), type (todo/goal/all), date_filter (today/this_week/this_month/all)

The confirmation_prompt should describe the operation clearly.
If the message is not a task operation request, reply with plain text instead.`

// Parser asks the AI gateway to interpret a chat message as a task operation.
type Parser struct {
	chat ai.ChatFunc
}

func NewParser(chat ai.ChatFunc) *Parser {
	return &Parser{chat: chat}
}

// Parse returns the intent encoded in the model's reply, or the empty intent
// when the reply is not a task operation or the gateway call fails. Gateway
// errors never propagate: to the caller, "not a task operation" and "AI call
// failed" look the same.
func (p *Parser) Parse(ctx context.Context, userMessage string, provider string) Intent {
	reply, err := p.chat(ctx, []ai.Message{{Role: "user", Content: userMessage}}, provider, parserSystemPrompt)
	if err != nil {
		logger.Warn("Intent parse skipped, AI request failed: %v", err)
		return Empty()
	}
	parsed := FromReply(reply)
	if !parsed.IsEmpty() {
		logger.Info("Parsed task intent: %s", parsed.Action)
	}
	return parsed
}

// FromReply decodes a raw model reply as an intent. Anything that is not a
// JSON object carrying an action key yields the empty intent.
func FromReply(reply string) Intent {
	reply = strings.TrimSpace(reply)
	if !gjson.Valid(reply) {
		logger.Debug("Reply is not valid JSON, not a task operation")
		return Empty()
	}
	parsed := gjson.Parse(reply)
	if !parsed.IsObject() || !parsed.Get("action").Exists() {
		return Empty()
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &data); err != nil {
		return Empty()
	}
	return FromJSON(data)
}
