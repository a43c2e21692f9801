package api

import (
	"errors"
	"strings"
	"sync"
	"time"

	"everlove/letters"
	"everlove/models"
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// LetterHandler exposes the letter repository over HTTP. One repository
// instance is kept per authenticated user so the session cache semantics
// match a client-side store.
type LetterHandler struct {
	gateway *storage.LetterStore
	hub     *NotificationHub

	mu    sync.Mutex
	repos map[string]*letters.Repository
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(gateway *storage.LetterStore, hub *NotificationHub) *LetterHandler {
	return &LetterHandler{
		gateway: gateway,
		hub:     hub,
		repos:   make(map[string]*letters.Repository),
	}
}

// repoFor returns the user's repository, creating it on first use.
func (h *LetterHandler) repoFor(userID string) *letters.Repository {
	h.mu.Lock()
	defer h.mu.Unlock()

	repo, ok := h.repos[userID]
	if !ok {
		repo = letters.NewRepository(h.gateway, h.hub.NotifierFor(userID), userID)
		h.repos[userID] = repo
	}
	return repo
}

// LetterRequest is the create/update payload.
type LetterRequest struct {
	Recipient    string     `json:"recipient"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	IsDraft      bool       `json:"is_draft"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// ListLetters returns the user's letters, newest first, optionally
// paginated and filtered to drafts or sent.
func (h *LetterHandler) ListLetters(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	all, err := h.repoFor(userID).List()
	if err != nil {
		return utils.InternalServerError("Failed to load letters", err)
	}

	switch c.Query("filter") {
	case "drafts":
		all = filterLetters(all, func(l models.Letter) bool { return l.IsDraft })
	case "sent":
		all = filterLetters(all, func(l models.Letter) bool { return !l.IsDraft })
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", defaultPageSize)

	start, end, page, pageSize := pageWindow(len(all), page, pageSize)

	result := models.NewPaginatedLetters(all[start:end], uint32(page), uint32(pageSize), uint32(len(all)))
	return c.JSON(result)
}

// CreateLetter persists a new letter: a send or a draft save, depending
// on is_draft. Validation mirrors the composer's policy and re-checks the
// schedule server-side.
func (h *LetterHandler) CreateLetter(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	var req LetterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	letter := models.Letter{
		Recipient: strings.TrimSpace(utils.StripHTML(req.Recipient)),
		Title:     strings.TrimSpace(utils.StripHTML(req.Title)),
		Content:   utils.SanitizeLetterHTML(req.Content),
		IsDraft:   req.IsDraft,
	}

	if strings.TrimSpace(letter.Content) == "" {
		return utils.BadRequestError("Letter content is required", nil)
	}
	if !letter.IsDraft && letter.Recipient == "" {
		return utils.BadRequestError("Recipient is required to send a letter", nil)
	}
	if req.ScheduledFor != nil {
		if req.ScheduledFor.Before(time.Now()) {
			return utils.BadRequestError("Scheduled time must be in the future", nil)
		}
		letter.ScheduledFor = *req.ScheduledFor
	}

	created, err := h.repoFor(userID).Create(letter)
	if err != nil {
		return utils.InternalServerError("Failed to save letter", err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"letter":  created,
	})
}

// GetLetter retrieves one of the user's letters.
func (h *LetterHandler) GetLetter(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	letter, err := h.gateway.GetByID(c.Params("id"))
	if err != nil || letter.AuthorID != userID {
		return utils.NotFoundError("Letter not found", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"letter":  letter,
	})
}

// UpdateLetter applies a partial change to one letter.
func (h *LetterHandler) UpdateLetter(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	var patch models.LetterPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	if patch.Content != nil {
		sanitized := utils.SanitizeLetterHTML(*patch.Content)
		if strings.TrimSpace(sanitized) == "" {
			return utils.BadRequestError("Letter content cannot be emptied", nil)
		}
		patch.Content = &sanitized
	}
	if patch.Recipient != nil {
		clean := strings.TrimSpace(utils.StripHTML(*patch.Recipient))
		patch.Recipient = &clean
	}
	if patch.ScheduledFor != nil && !patch.ScheduledFor.IsZero() && patch.ScheduledFor.Before(time.Now()) {
		return utils.BadRequestError("Scheduled time must be in the future", nil)
	}

	updated, err := h.repoFor(userID).Update(c.Params("id"), patch)
	if err != nil {
		if errors.Is(err, storage.ErrLetterNotFound) {
			return utils.NotFoundError("Letter not found", err)
		}
		return utils.InternalServerError("Failed to update letter", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"letter":  updated,
	})
}

// DeleteLetter removes one letter.
func (h *LetterHandler) DeleteLetter(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	if err := h.repoFor(userID).Delete(c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrLetterNotFound) {
			return utils.NotFoundError("Letter not found", err)
		}
		return utils.InternalServerError("Failed to delete letter", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Letter deleted",
	})
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pageWindow clamps query-supplied paging values and returns safe slice
// bounds. Out-of-range pages collapse to the last page rather than
// overflowing the index arithmetic.
func pageWindow(total, page, pageSize int) (start, end, clampedPage, clampedSize int) {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	if lastPage := total/pageSize + 1; page > lastPage {
		page = lastPage
	}

	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end, page, pageSize
}

func filterLetters(list []models.Letter, keep func(models.Letter) bool) []models.Letter {
	out := []models.Letter{}
	for _, l := range list {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
