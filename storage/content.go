package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"everlove/models"

	"go.etcd.io/bbolt"
)

// ContentStore serves the curated quotes/books/songs collections.
type ContentStore struct {
	db *bbolt.DB
}

// NewContentStore creates a new content store instance
func NewContentStore(db *bbolt.DB) *ContentStore {
	return &ContentStore{db: db}
}

// ListQuotes returns curated quotes, optionally filtered by category.
func (s *ContentStore) ListQuotes(category string) ([]models.Quote, error) {
	var quotes []models.Quote

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("Quotes")).ForEach(func(k, v []byte) error {
			var q models.Quote
			if err := json.Unmarshal(v, &q); err != nil {
				return fmt.Errorf("failed to unmarshal quote %s: %w", k, err)
			}
			if category == "" || strings.EqualFold(q.Category, category) {
				quotes = append(quotes, q)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return quotes, nil
}

// ListBooks returns curated books, optionally filtered by category.
func (s *ContentStore) ListBooks(category string) ([]models.Book, error) {
	var books []models.Book

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("Books")).ForEach(func(k, v []byte) error {
			var b models.Book
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("failed to unmarshal book %s: %w", k, err)
			}
			if category == "" || strings.EqualFold(b.Category, category) {
				books = append(books, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// ListSongs returns curated songs, optionally filtered by category.
func (s *ContentStore) ListSongs(category string) ([]models.Song, error) {
	var songs []models.Song

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("Songs")).ForEach(func(k, v []byte) error {
			var song models.Song
			if err := json.Unmarshal(v, &song); err != nil {
				return fmt.Errorf("failed to unmarshal song %s: %w", k, err)
			}
			if category == "" || strings.EqualFold(song.Category, category) {
				songs = append(songs, song)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return songs, nil
}
