package models

// Curated relationship content. All three collections are seeded once and
// served read-only.

// Quote is a short curated quote about love or relationships.
type Quote struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Author   string `json:"author"`
	Category string `json:"category,omitempty"`
}

// Book is a curated book recommendation.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Song is a curated song recommendation.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Category string `json:"category,omitempty"`
}
