package api

import (
	"strings"
	"time"

	"everlove/config"
	"everlove/models"
	"everlove/utils"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
)

// historyTTL bounds how long an idle conversation is kept.
const historyTTL = 2 * time.Hour

// ChatHandler proxies companion conversations to an OpenAI-compatible
// inference endpoint. It prepends the fixed persona, forwards a bounded
// window of prior turns, and returns a single trimmed reply. Histories
// live in the in-memory cache only.
type ChatHandler struct {
	config  *config.ChatConfig
	client  *resty.Client
	history *utils.MemoryCache
}

// NewChatHandler creates a new chat handler
func NewChatHandler(cfg *config.ChatConfig) *ChatHandler {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout())

	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &ChatHandler{
		config:  cfg,
		client:  client,
		history: utils.NewMemoryCache(1000),
	}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string                  `json:"model"`
	Messages  []chatCompletionMessage `json:"messages"`
	MaxTokens int                     `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// HandleChat forwards one user message and returns the companion's reply.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return utils.BadRequestError("Message is required", nil)
	}

	turns := h.turnsFor(userID)

	// Persona first, then the bounded history, then the new message
	messages := []chatCompletionMessage{{Role: "system", Content: h.config.Persona}}
	for _, turn := range turns {
		messages = append(messages, chatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: "user", Content: message})

	var result chatCompletionResponse
	resp, err := h.client.R().
		SetContext(c.Context()).
		SetBody(&chatCompletionRequest{
			Model:     h.config.Model,
			Messages:  messages,
			MaxTokens: h.config.MaxTokens,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")

	if err != nil {
		utils.Log.Error("Chat proxy request failed: %v", err)
		return utils.InternalServerError("The companion is unavailable right now", err)
	}
	if resp.IsError() || len(result.Choices) == 0 {
		detail := resp.Status()
		if result.Error != nil {
			detail = result.Error.Message
		}
		utils.Log.Error("Chat proxy returned no reply: %s", detail)
		return utils.InternalServerError("The companion is unavailable right now", nil)
	}

	reply := strings.TrimSpace(result.Choices[0].Message.Content)

	now := time.Now()
	turns = append(turns,
		models.ChatMessage{Role: "user", Content: message, Time: now},
		models.ChatMessage{Role: "assistant", Content: reply, Time: now},
	)
	if max := h.config.MaxHistory; max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	h.history.Set(userID, turns, historyTTL)

	return c.JSON(fiber.Map{
		"success": true,
		"reply":   reply,
	})
}

// GetHistory returns the current conversation.
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": h.turnsFor(userID),
	})
}

// ClearHistory starts the conversation over.
func (h *ChatHandler) ClearHistory(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	h.history.Delete(userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conversation cleared",
	})
}

func (h *ChatHandler) turnsFor(userID string) []models.ChatMessage {
	if cached, ok := h.history.Get(userID); ok {
		if turns, ok := cached.([]models.ChatMessage); ok {
			return turns
		}
	}
	return nil
}
