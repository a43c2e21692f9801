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

// ErrLetterNotFound is returned when a letter id has no record.
var ErrLetterNotFound = errors.New("letter not found")

// LetterStore is the persistence gateway for letters. Ids and timestamps
// are assigned here; AuthorID and ID never change after creation.
type LetterStore struct {
	db *bbolt.DB
}

// NewLetterStore creates a new letter store instance
func NewLetterStore(db *bbolt.DB) *LetterStore {
	return &LetterStore{db: db}
}

func indexKey(authorID, letterID string) []byte {
	return []byte(authorID + "/" + letterID)
}

// Create persists a new letter, assigning its id and timestamps. The
// returned letter is the persisted record.
func (s *LetterStore) Create(letter *models.Letter) (*models.Letter, error) {
	if letter.AuthorID == "" {
		return nil, fmt.Errorf("letter has no author")
	}

	stored := *letter
	stored.ID = uuid.New().String()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal letter: %w", err)
		}

		if err := tx.Bucket([]byte("Letters")).Put([]byte(stored.ID), data); err != nil {
			return err
		}
		return tx.Bucket([]byte("AuthorIndex")).Put(indexKey(stored.AuthorID, stored.ID), []byte(stored.ID))
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetByID retrieves a letter by id.
func (s *LetterStore) GetByID(id string) (*models.Letter, error) {
	var letter models.Letter

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte("Letters")).Get([]byte(id))
		if data == nil {
			return ErrLetterNotFound
		}
		return json.Unmarshal(data, &letter)
	})
	if err != nil {
		return nil, err
	}

	return &letter, nil
}

// ListByAuthor returns all letters owned by authorID, newest first by
// creation time.
func (s *LetterStore) ListByAuthor(authorID string) ([]models.Letter, error) {
	var letters []models.Letter

	err := s.db.View(func(tx *bbolt.Tx) error {
		letterBucket := tx.Bucket([]byte("Letters"))
		c := tx.Bucket([]byte("AuthorIndex")).Cursor()

		prefix := []byte(authorID + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			data := letterBucket.Get(v)
			if data == nil {
				continue // stale index entry
			}
			var letter models.Letter
			if err := json.Unmarshal(data, &letter); err != nil {
				return fmt.Errorf("failed to unmarshal letter %s: %w", v, err)
			}
			letters = append(letters, letter)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(letters, func(i, j int) bool {
		return letters[i].CreatedAt.After(letters[j].CreatedAt)
	})

	return letters, nil
}

// Update applies a partial patch to a letter and refreshes UpdatedAt.
// Only the author may update; id and author are immutable.
func (s *LetterStore) Update(authorID, id string, patch models.LetterPatch) (*models.Letter, error) {
	var updated models.Letter

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte("Letters"))

		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrLetterNotFound
		}
		if err := json.Unmarshal(data, &updated); err != nil {
			return fmt.Errorf("failed to unmarshal letter: %w", err)
		}

		if updated.AuthorID != authorID {
			return ErrLetterNotFound
		}

		if patch.Recipient != nil {
			updated.Recipient = *patch.Recipient
		}
		if patch.Title != nil {
			updated.Title = *patch.Title
		}
		if patch.Content != nil {
			updated.Content = *patch.Content
		}
		if patch.IsDraft != nil {
			updated.IsDraft = *patch.IsDraft
		}
		if patch.ScheduledFor != nil {
			updated.ScheduledFor = *patch.ScheduledFor
		}
		updated.UpdatedAt = time.Now()

		out, err := json.Marshal(&updated)
		if err != nil {
			return fmt.Errorf("failed to marshal letter: %w", err)
		}
		return bucket.Put([]byte(id), out)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a letter by id. Only the author may delete.
func (s *LetterStore) Delete(authorID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte("Letters"))

		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrLetterNotFound
		}

		var letter models.Letter
		if err := json.Unmarshal(data, &letter); err != nil {
			return fmt.Errorf("failed to unmarshal letter: %w", err)
		}
		if letter.AuthorID != authorID {
			return ErrLetterNotFound
		}

		if err := bucket.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket([]byte("AuthorIndex")).Delete(indexKey(authorID, id))
	})
}
