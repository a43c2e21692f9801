package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"everlove/models"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// ErrPostNotFound is returned when a forum post id has no record.
var ErrPostNotFound = errors.New("post not found")

// ForumStore persists community forum posts and comments.
type ForumStore struct {
	db *bbolt.DB
}

// NewForumStore creates a new forum store instance
func NewForumStore(db *bbolt.DB) *ForumStore {
	return &ForumStore{db: db}
}

// CreatePost persists a new forum post.
func (s *ForumStore) CreatePost(post *models.ForumPost) (*models.ForumPost, error) {
	stored := *post
	stored.ID = uuid.New().String()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal post: %w", err)
		}
		return tx.Bucket([]byte("ForumPosts")).Put([]byte(stored.ID), data)
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// ListPosts returns all forum posts, newest first.
func (s *ForumStore) ListPosts() ([]models.ForumPost, error) {
	var posts []models.ForumPost

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("ForumPosts")).ForEach(func(k, v []byte) error {
			var p models.ForumPost
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to unmarshal post %s: %w", k, err)
			}
			posts = append(posts, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

// GetPost retrieves a post by id.
func (s *ForumStore) GetPost(id string) (*models.ForumPost, error) {
	var post models.ForumPost

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte("ForumPosts")).Get([]byte(id))
		if data == nil {
			return ErrPostNotFound
		}
		return json.Unmarshal(data, &post)
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// DeletePost removes a post and its comments. Only the author may delete.
func (s *ForumStore) DeletePost(authorID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		posts := tx.Bucket([]byte("ForumPosts"))

		data := posts.Get([]byte(id))
		if data == nil {
			return ErrPostNotFound
		}

		var post models.ForumPost
		if err := json.Unmarshal(data, &post); err != nil {
			return fmt.Errorf("failed to unmarshal post: %w", err)
		}
		if post.AuthorID != authorID {
			return ErrPostNotFound
		}

		if err := posts.Delete([]byte(id)); err != nil {
			return err
		}

		// Drop the post's comments and their index entries
		comments := tx.Bucket([]byte("ForumComments"))
		index := tx.Bucket([]byte("CommentIndex"))
		c := index.Cursor()
		prefix := []byte(id + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := comments.Delete(v); err != nil {
				return err
			}
			if err := index.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// LikePost increments a post's like counter and returns the new count.
func (s *ForumStore) LikePost(id string) (int, error) {
	var likes int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte("ForumPosts"))

		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrPostNotFound
		}

		var post models.ForumPost
		if err := json.Unmarshal(data, &post); err != nil {
			return fmt.Errorf("failed to unmarshal post: %w", err)
		}

		post.Likes++
		post.UpdatedAt = time.Now()
		likes = post.Likes

		out, err := json.Marshal(&post)
		if err != nil {
			return fmt.Errorf("failed to marshal post: %w", err)
		}
		return bucket.Put([]byte(id), out)
	})
	if err != nil {
		return 0, err
	}

	return likes, nil
}

// AddComment attaches a comment to a post and bumps its comment counter.
func (s *ForumStore) AddComment(comment *models.ForumComment) (*models.ForumComment, error) {
	stored := *comment
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		posts := tx.Bucket([]byte("ForumPosts"))

		data := posts.Get([]byte(stored.PostID))
		if data == nil {
			return ErrPostNotFound
		}

		var post models.ForumPost
		if err := json.Unmarshal(data, &post); err != nil {
			return fmt.Errorf("failed to unmarshal post: %w", err)
		}
		post.Comments++
		post.UpdatedAt = time.Now()

		postData, err := json.Marshal(&post)
		if err != nil {
			return fmt.Errorf("failed to marshal post: %w", err)
		}
		if err := posts.Put([]byte(post.ID), postData); err != nil {
			return err
		}

		commentData, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal comment: %w", err)
		}
		if err := tx.Bucket([]byte("ForumComments")).Put([]byte(stored.ID), commentData); err != nil {
			return err
		}
		return tx.Bucket([]byte("CommentIndex")).Put([]byte(stored.PostID+"/"+stored.ID), []byte(stored.ID))
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// ListComments returns a post's comments, oldest first.
func (s *ForumStore) ListComments(postID string) ([]models.ForumComment, error) {
	var comments []models.ForumComment

	err := s.db.View(func(tx *bbolt.Tx) error {
		commentBucket := tx.Bucket([]byte("ForumComments"))
		c := tx.Bucket([]byte("CommentIndex")).Cursor()

		prefix := []byte(postID + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			data := commentBucket.Get(v)
			if data == nil {
				continue
			}
			var comment models.ForumComment
			if err := json.Unmarshal(data, &comment); err != nil {
				return fmt.Errorf("failed to unmarshal comment %s: %w", v, err)
			}
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}
