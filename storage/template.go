package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"everlove/models"

	"go.etcd.io/bbolt"
)

// ErrTemplateNotFound is returned when a template id has no record.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateStore serves the read-only letter_templates collection.
type TemplateStore struct {
	db *bbolt.DB
}

// NewTemplateStore creates a new template store instance
func NewTemplateStore(db *bbolt.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// List returns all letter templates, ordered by title.
func (s *TemplateStore) List() ([]models.LetterTemplate, error) {
	var templates []models.LetterTemplate

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("Templates")).ForEach(func(k, v []byte) error {
			var t models.LetterTemplate
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to unmarshal template %s: %w", k, err)
			}
			templates = append(templates, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Title < templates[j].Title
	})

	return templates, nil
}

// GetByID retrieves a template by id.
func (s *TemplateStore) GetByID(id string) (*models.LetterTemplate, error) {
	var t models.LetterTemplate

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte("Templates")).Get([]byte(id))
		if data == nil {
			return ErrTemplateNotFound
		}
		return json.Unmarshal(data, &t)
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}
