package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"everlove/models"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// Seed populates the read-only collections (templates, quotes, books,
// songs) on first start. A non-empty Templates bucket means seeding
// already happened.
func Seed(db *bbolt.DB) error {
	seeded := false
	err := db.View(func(tx *bbolt.Tx) error {
		seeded = tx.Bucket([]byte("Templates")).Stats().KeyN > 0
		return nil
	})
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	return db.Update(func(tx *bbolt.Tx) error {
		for _, t := range seedTemplates {
			t.ID = uuid.New().String()
			if err := putJSON(tx, "Templates", t.ID, t); err != nil {
				return err
			}
		}
		for _, q := range seedQuotes {
			q.ID = uuid.New().String()
			if err := putJSON(tx, "Quotes", q.ID, q); err != nil {
				return err
			}
		}
		for _, b := range seedBooks {
			b.ID = uuid.New().String()
			if err := putJSON(tx, "Books", b.ID, b); err != nil {
				return err
			}
		}
		for _, song := range seedSongs {
			song.ID = uuid.New().String()
			if err := putJSON(tx, "Songs", song.ID, song); err != nil {
				return err
			}
		}
		return nil
	})
}

func putJSON(tx *bbolt.Tx, bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s seed: %w", bucket, err)
	}
	return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
}

// SampleInbox returns the demo received letters. There is no cross-account
// delivery channel yet, so the inbox is a seeded demonstration set.
func SampleInbox() []models.InboxLetter {
	now := time.Now()
	return []models.InboxLetter{
		{
			ID:      "sample-1",
			Sender:  "Sarah",
			Title:   "Thinking of you",
			Content: "I passed the little bookshop on Elm Street today and thought of the afternoon we spent there in the rain.",
			Date:    now.Add(-2 * time.Hour),
		},
		{
			ID:      "sample-2",
			Sender:  "Daniel",
			Title:   "Six months",
			Content: "Half a year already. I still remember how nervous I was writing you that first letter.",
			Date:    now.Add(-26 * time.Hour),
		},
		{
			ID:      "sample-3",
			Sender:  "Sarah",
			Title:   "Good morning",
			Content: "Just a small note before work. Have a wonderful day, and save me a dance for Friday.",
			Date:    now.Add(-72 * time.Hour),
		},
	}
}

var seedTemplates = []models.LetterTemplate{
	{
		Title:    "First Letter",
		Category: "beginnings",
		Content: "Dear you,\n\nI have started this letter a dozen times and crossed out every opening. " +
			"So let me just say it plainly: meeting you has changed the shape of my days.\n\n" +
			"Yours,",
	},
	{
		Title:    "Anniversary",
		Category: "milestones",
		Content: "My love,\n\nAnother year with you, and still I find new things to be grateful for. " +
			"Thank you for every small kindness I forgot to mention at the time.\n\n" +
			"Always,",
	},
	{
		Title:    "Apology",
		Category: "repair",
		Content: "Dear heart,\n\nI was wrong, and I am sorry. Not the quick kind of sorry, " +
			"but the kind that sits with what it did. I would like to make it right.\n\n",
	},
	{
		Title:    "Long Distance",
		Category: "distance",
		Content: "To you, far away,\n\nThe miles are stubborn but so am I. " +
			"Tonight the same moon is over both of us, and that will have to do until I see you.\n\n",
	},
}

var seedQuotes = []models.Quote{
	{Text: "Whatever our souls are made of, his and mine are the same.", Author: "Emily Brontë", Category: "classic"},
	{Text: "I have waited for this opportunity for more than half a century, to repeat to you once again my vow of eternal fidelity and everlasting love.", Author: "Gabriel García Márquez", Category: "classic"},
	{Text: "In vain have I struggled. It will not do. My feelings will not be repressed. You must allow me to tell you how ardently I admire and love you.", Author: "Jane Austen", Category: "classic"},
	{Text: "Love does not consist of gazing at each other, but in looking outward together in the same direction.", Author: "Antoine de Saint-Exupéry", Category: "modern"},
}

var seedBooks = []models.Book{
	{Title: "Love in the Time of Cholera", Author: "Gabriel García Márquez", Description: "A love deferred for fifty-one years, nine months, and four days.", Category: "fiction"},
	{Title: "The Five Love Languages", Author: "Gary Chapman", Description: "How people give and receive love differently.", Category: "practical"},
	{Title: "Letters to a Young Poet", Author: "Rainer Maria Rilke", Description: "Ten letters on love, solitude, and the patience both require.", Category: "letters"},
}

var seedSongs = []models.Song{
	{Title: "La Vie en Rose", Artist: "Édith Piaf", Category: "classic"},
	{Title: "Something", Artist: "The Beatles", Category: "classic"},
	{Title: "Lover", Artist: "Taylor Swift", Category: "modern"},
	{Title: "All of Me", Artist: "John Legend", Category: "modern"},
}
