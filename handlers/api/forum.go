package api

import (
	"errors"
	"strings"

	"everlove/models"
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// ForumHandler exposes the community forum.
type ForumHandler struct {
	storage *storage.ForumStore
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumStore *storage.ForumStore) *ForumHandler {
	return &ForumHandler{storage: forumStore}
}

// GetPosts retrieves all forum posts, newest first
func (h *ForumHandler) GetPosts(c *fiber.Ctx) error {
	posts, err := h.storage.ListPosts()
	if err != nil {
		return utils.InternalServerError("Failed to load posts", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// CreatePost creates a new forum post
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	title := strings.TrimSpace(utils.StripHTML(req.Title))
	body := utils.SanitizeLetterHTML(req.Body)
	if title == "" || strings.TrimSpace(body) == "" {
		return utils.BadRequestError("Title and body are required", nil)
	}

	post, err := h.storage.CreatePost(&models.ForumPost{
		AuthorID:   userID,
		AuthorName: CurrentDisplayName(c),
		Title:      title,
		Body:       body,
	})
	if err != nil {
		return utils.InternalServerError("Failed to create post", err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// GetPost retrieves one post with its comments
func (h *ForumHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.storage.GetPost(c.Params("id"))
	if err != nil {
		return utils.NotFoundError("Post not found", err)
	}

	comments, err := h.storage.ListComments(post.ID)
	if err != nil {
		return utils.InternalServerError("Failed to load comments", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"post":     post,
		"comments": comments,
	})
}

// DeletePost removes a post; only the author may delete it.
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	if err := h.storage.DeletePost(userID, c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return utils.NotFoundError("Post not found", err)
		}
		return utils.InternalServerError("Failed to delete post", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted",
	})
}

// LikePost increments a post's like counter
func (h *ForumHandler) LikePost(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	likes, err := h.storage.LikePost(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return utils.NotFoundError("Post not found", err)
		}
		return utils.InternalServerError("Failed to like post", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"likes":   likes,
	})
}

// AddComment attaches a comment to a post
func (h *ForumHandler) AddComment(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return utils.UnauthorizedError("Please sign in first", nil)
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	body := utils.SanitizeLetterHTML(req.Body)
	if strings.TrimSpace(body) == "" {
		return utils.BadRequestError("Comment body is required", nil)
	}

	comment, err := h.storage.AddComment(&models.ForumComment{
		PostID:     c.Params("id"),
		AuthorID:   userID,
		AuthorName: CurrentDisplayName(c),
		Body:       body,
	})
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return utils.NotFoundError("Post not found", err)
		}
		return utils.InternalServerError("Failed to add comment", err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"comment": comment,
	})
}
