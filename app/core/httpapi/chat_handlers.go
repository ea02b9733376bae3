package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
)

const historyContextLimit = 20

type chatRequest struct {
	Message           string       `json:"message"`
	Messages          []ai.Message `json:"messages"`
	ModelProvider     string       `json:"model_provider"`
	AnalyzeTaskIntent bool         `json:"analyze_task_intent"`
	UseHistory        *bool        `json:"use_history"`
}

// handleChat runs one conversational turn. Signed-in users get their recent
// history as context and the turn persisted; when intent analysis is on and a
// task intent is found, the confirmation prompt is returned instead of a
// model reply.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var (
		userMessage string
		messages    []ai.Message
	)
	switch {
	case len(req.Messages) > 0:
		messages = req.Messages
		if last := req.Messages[len(req.Messages)-1]; last.Role == "user" {
			userMessage = last.Content
		}
	case strings.TrimSpace(req.Message) != "":
		userMessage = req.Message
		messages = []ai.Message{{Role: "user", Content: userMessage}}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No message(s) provided."})
		return
	}

	user, signedIn := currentUser(c)
	ctx := c.Request.Context()
	useHistory := req.UseHistory == nil || *req.UseHistory

	if req.AnalyzeTaskIntent && signedIn && userMessage != "" {
		parsed := s.parser.Parse(ctx, userMessage, req.ModelProvider)
		if !parsed.IsEmpty() {
			if !s.persistChatTurn(c, user, userMessage, parsed.ConfirmationPrompt, req.ModelProvider) {
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"response":    parsed.ConfirmationPrompt,
				"task_intent": parsed.ToJSON(),
			})
			return
		}
	}

	if signedIn && useHistory && len(req.Messages) == 0 {
		history, err := s.chats.RecentForContext(ctx, user.ID, historyContextLimit)
		if err == nil && len(history) > 0 {
			context := make([]ai.Message, 0, len(history)+1)
			for _, m := range history {
				context = append(context, ai.Message{Role: m.Role, Content: m.Content})
			}
			messages = append(context, ai.Message{Role: "user", Content: userMessage})
		}
	}

	reply, err := s.chat(ctx, messages, req.ModelProvider, ai.GoalAssistantSystemPrompt())
	if err != nil {
		writeError(c, err)
		return
	}

	if signedIn && !s.persistChatTurn(c, user, userMessage, reply, req.ModelProvider) {
		return
	}

	resp := gin.H{"response": reply}
	if req.AnalyzeTaskIntent && signedIn {
		if taskIntent, ok := sniffTaskIntent(reply); ok {
			resp["task_intent"] = taskIntent
		}
	}
	c.JSON(http.StatusOK, resp)
}

// sniffTaskIntent opportunistically reads a plain chat reply as an intent
// object, for clients that asked for intent analysis.
func sniffTaskIntent(reply string) (map[string]interface{}, bool) {
	reply = strings.TrimSpace(reply)
	if !gjson.Valid(reply) {
		return nil, false
	}
	parsed := gjson.Parse(reply)
	if !parsed.IsObject() || !parsed.Get("action").Exists() || !parsed.Get("confirmation_prompt").Exists() {
		return nil, false
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &data); err != nil {
		return nil, false
	}
	return data, true
}

func (s *Server) persistChatTurn(c *gin.Context, user store.User, userMessage string, reply string, provider string) bool {
	ctx := c.Request.Context()
	if userMessage != "" {
		if _, err := s.chats.Append(ctx, user.ID, "user", userMessage, provider); err != nil {
			writeError(c, err)
			return false
		}
	}
	if _, err := s.chats.Append(ctx, user.ID, "assistant", reply, provider); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func (s *Server) handleChatHistory(c *gin.Context) {
	user, _ := currentUser(c)

	days := queryInt(c, "days", 7)
	limit := queryInt(c, "limit", 200)
	since := time.Now().AddDate(0, 0, -days).Unix()

	messages, err := s.chats.ListSince(c.Request.Context(), user.ID, since, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	grouped := make(map[string][]chatMessageView)
	for _, m := range messages {
		date := time.Unix(m.CreatedAt, 0).UTC().Format("2006-01-02")
		grouped[date] = append(grouped[date], newChatMessageView(m))
	}

	dates := make([]string, 0, len(grouped))
	for date := range grouped {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	resp := make([]gin.H, 0, len(dates))
	for _, date := range dates {
		resp = append(resp, gin.H{"date": date, "messages": grouped[date]})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteChatMessage(c *gin.Context) {
	user, _ := currentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid message id"})
		return
	}

	if err := s.chats.Delete(c.Request.Context(), id, user.ID); err != nil {
		if err == store.ErrMessageNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Message not found or not owned by current user"})
			return
		}
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearChatHistory(c *gin.Context) {
	user, _ := currentUser(c)
	if _, err := s.chats.ClearForUser(c.Request.Context(), user.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
