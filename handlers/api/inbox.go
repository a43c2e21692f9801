package api

import (
	"sync"

	"everlove/letters"
	"everlove/models"
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// InboxHandler serves received letters. There is no cross-account
// delivery channel yet, so the listing comes from the seeded sample set;
// read flags live with the session, never in the store.
type InboxHandler struct {
	hub *NotificationHub

	mu      sync.Mutex
	inboxes map[string]*letters.Inbox
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(hub *NotificationHub) *InboxHandler {
	return &InboxHandler{
		hub:     hub,
		inboxes: make(map[string]*letters.Inbox),
	}
}

func (h *InboxHandler) inboxFor(userID string) *letters.Inbox {
	h.mu.Lock()
	defer h.mu.Unlock()

	inbox, ok := h.inboxes[userID]
	if !ok {
		inbox = letters.NewInbox(func() ([]models.InboxLetter, error) {
			received := storage.SampleInbox()
			for i := range received {
				received[i].Preview = utils.CreatePreview(received[i].Content)
			}
			return received, nil
		}, h.hub.NotifierFor(userID))
		if err := inbox.Refresh(); err != nil {
			utils.Log.Warn("Initial inbox load failed for user %s: %v", userID, err)
		}
		h.inboxes[userID] = inbox
	}
	return inbox
}

// GetInbox returns the full inbox listing.
func (h *InboxHandler) GetInbox(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	inbox := h.inboxFor(userID)
	return c.JSON(fiber.Map{
		"success": true,
		"letters": inbox.Letters(),
		"unread":  inbox.UnreadCount(),
	})
}

// Search filters the inbox by a case-insensitive substring over content
// and sender. An empty query returns everything.
func (h *InboxHandler) Search(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	query := c.Query("q")
	results := h.inboxFor(userID).Filter(query)

	utils.Log.Debug("Inbox search: query='%s' results=%d", query, len(results))

	return c.JSON(fiber.Map{
		"success": true,
		"query":   query,
		"letters": results,
	})
}

// MarkRead flags one letter as read for this session.
func (h *InboxHandler) MarkRead(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	h.inboxFor(userID).MarkRead(c.Params("id"))

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Refresh re-fetches the listing and reports completion.
func (h *InboxHandler) Refresh(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	inbox := h.inboxFor(userID)
	if err := inbox.Refresh(); err != nil {
		return utils.InternalServerError("Failed to refresh inbox", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"letters": inbox.Letters(),
	})
}
