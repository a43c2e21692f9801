package api

import (
	"bufio"
	"encoding/json"
	"sync"
	"time"

	"everlove/letters"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Notification is the wire form of an operation outcome.
type Notification struct {
	ID      string                 `json:"id"`
	Success bool                   `json:"success"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Time    time.Time              `json:"time"`
}

type subscriber struct {
	userID string
	ch     chan Notification
}

// NotificationHub delivers operation outcomes to a user's open clients
// over SSE and WebSocket.
type NotificationHub struct {
	subscribers map[string]*subscriber
	mu          sync.RWMutex
}

// NewNotificationHub creates a new notification hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		subscribers: make(map[string]*subscriber),
	}
}

// NotifierFor returns a letters.Notifier that delivers to one user.
func (h *NotificationHub) NotifierFor(userID string) letters.Notifier {
	return letters.NotifierFunc(func(n letters.Notification) {
		h.NotifyUser(userID, n)
	})
}

// NotifyUser sends a notification to all of one user's subscribers.
func (h *NotificationHub) NotifyUser(userID string, n letters.Notification) {
	out := Notification{
		ID:      uuid.New().String(),
		Success: n.Success,
		Code:    n.Code,
		Message: n.Text,
		Data:    n.Data,
		Time:    time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subscribers {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- out:
			// Sent successfully
		default:
			// Channel full, skip this subscriber
			utils.Log.Warn("Notification channel full for subscriber %s", id)
		}
	}
}

func (h *NotificationHub) subscribe(userID string) (string, chan Notification) {
	id := uuid.New().String()
	ch := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[id] = &subscriber{userID: userID, ch: ch}
	h.mu.Unlock()

	return id, ch
}

func (h *NotificationHub) unsubscribe(id string) {
	h.mu.Lock()
	if sub, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// HandleSSE streams notifications over Server-Sent Events.
func (h *NotificationHub) HandleSSE(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	subscriberID, messageChan := h.subscribe(userID)
	utils.Log.Info("SSE subscriber connected: %s", subscriberID)

	ctx := c.Context()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.unsubscribe(subscriberID)
			utils.Log.Info("SSE subscriber disconnected: %s", subscriberID)
		}()

		// Keep-alive ticker
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-messageChan:
				if !ok {
					return
				}
				data, _ := json.Marshal(notification)
				w.WriteString("data: " + string(data) + "\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-ticker.C:
				// Send keep-alive comment
				w.WriteString(": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}))

	return nil
}

// HandleWebSocket streams notifications over a WebSocket connection. The
// user id is resolved before the upgrade and passed through Locals.
func (h *NotificationHub) HandleWebSocket(c *websocket.Conn) {
	userID, _ := c.Locals("userId").(string)
	if userID == "" {
		c.Close()
		return
	}

	subscriberID, messageChan := h.subscribe(userID)
	defer func() {
		h.unsubscribe(subscriberID)
		c.Close()
		utils.Log.Info("WebSocket subscriber disconnected: %s", subscriberID)
	}()

	utils.Log.Info("WebSocket subscriber connected: %s", subscriberID)

	for notification := range messageChan {
		if err := c.WriteJSON(notification); err != nil {
			utils.Log.Error("Failed to send WebSocket notification: %v", err)
			break
		}
	}
}
