package chat

import (
	"fmt"
	"strings"

	"budgetmate-backend/internal/auth"
	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Responder is what the handlers need from the advice service. The
// concrete client never fails; it answers with a fixed apology string.
type Responder interface {
	Chat(message, history string, role models.UserRole) string
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"` // empty starts a new conversation
	Message        string `json:"message"`
}

type ChatMessageResponse struct {
	Sender    models.ChatSender `json:"sender"`
	Text      string            `json:"text"`
	CreatedAt string            `json:"created_at"`
}

func getUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not resolve user identity")
	}
	return userID, nil
}

// serializeTranscript renders prior turns the way the prompt expects:
// one "User: ..." or "Assistant: ..." line per turn.
func serializeTranscript(messages []models.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "User"
		if m.Sender == models.SenderAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Text))
	}
	return strings.Join(lines, "\n")
}

// POST /api/chat
func SendMessageHandler(ai Responder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		var body SendMessageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Message = strings.TrimSpace(body.Message)
		if body.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Message is required")
		}

		conversationID := body.ConversationID
		if conversationID == "" {
			conversationID = uuid.NewString()
		} else if _, err := uuid.Parse(conversationID); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid conversation id")
		}

		var prior []models.ChatMessage
		if err := database.DB.
			Where("user_id = ? AND conversation_id = ?", userID, conversationID).
			Order("created_at asc, id asc").
			Find(&prior).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chat history")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

		reply := ai.Chat(body.Message, serializeTranscript(prior), role)

		turn := []models.ChatMessage{
			{UserID: userID, ConversationID: conversationID, Sender: models.SenderUser, Text: body.Message},
			{UserID: userID, ConversationID: conversationID, Sender: models.SenderAssistant, Text: reply},
		}
		if err := database.DB.Create(&turn).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save chat messages")
		}

		return c.JSON(fiber.Map{
			"conversation_id": conversationID,
			"reply":           reply,
		})
	}
}

// GET /api/chat/history?conversation_id=...
func HistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		conversationID := c.Query("conversation_id")
		if conversationID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "conversation_id is required")
		}
		if _, err := uuid.Parse(conversationID); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid conversation id")
		}

		var rows []models.ChatMessage
		if err := database.DB.
			Where("user_id = ? AND conversation_id = ?", userID, conversationID).
			Order("created_at asc, id asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chat history")
		}

		resp := make([]ChatMessageResponse, 0, len(rows))
		for _, m := range rows {
			resp = append(resp, ChatMessageResponse{
				Sender:    m.Sender,
				Text:      m.Text,
				CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
