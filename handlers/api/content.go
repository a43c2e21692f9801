package api

import (
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves the curated quotes/books/songs collections.
type ContentHandler struct {
	storage *storage.ContentStore
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentStore *storage.ContentStore) *ContentHandler {
	return &ContentHandler{storage: contentStore}
}

// GetQuotes retrieves curated quotes, optionally filtered by category
func (h *ContentHandler) GetQuotes(c *fiber.Ctx) error {
	quotes, err := h.storage.ListQuotes(c.Query("category"))
	if err != nil {
		return utils.InternalServerError("Failed to load quotes", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quotes":  quotes,
	})
}

// GetBooks retrieves curated books, optionally filtered by category
func (h *ContentHandler) GetBooks(c *fiber.Ctx) error {
	books, err := h.storage.ListBooks(c.Query("category"))
	if err != nil {
		return utils.InternalServerError("Failed to load books", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"books":   books,
	})
}

// GetSongs retrieves curated songs, optionally filtered by category
func (h *ContentHandler) GetSongs(c *fiber.Ctx) error {
	songs, err := h.storage.ListSongs(c.Query("category"))
	if err != nil {
		return utils.InternalServerError("Failed to load songs", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"songs":   songs,
	})
}
