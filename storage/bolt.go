package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lettertrack/models"
	"lettertrack/utils"

	"go.etcd.io/bbolt"
)

const (
	letterBucket    = "letters"
	replyDateBucket = "letters_by_reply_date"
)

// BoltStorage keeps letters in a local bbolt file. Letters are keyed by id and
// a second bucket orders them by expected reply date.
type BoltStorage struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if needed) the letters database in dataDir
func OpenBolt(dataDir string) (*BoltStorage, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "letters.db")
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{letterBucket, replyDateBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %s", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStorage{db: db}, nil
}

// Close closes the database file
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// replyDateKey sorts by date first; UUIDv7 ids break ties in creation order
func replyDateKey(letter *models.Letter) []byte {
	return []byte(utils.FormatDate(letter.ExpectedReplyDate) + "/" + letter.ID)
}

// ListAll walks the reply date index and loads each letter
func (s *BoltStorage) ListAll(ctx context.Context) ([]models.Letter, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.StorageError("Failed to load letters", err)
	}

	letters := []models.Letter{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		byID := tx.Bucket([]byte(letterBucket))
		c := tx.Bucket([]byte(replyDateBucket)).Cursor()

		for k, id := c.First(); k != nil; k, id = c.Next() {
			data := byID.Get(id)
			if data == nil {
				utils.Log.WithField("key", string(k)).Warn("Reply date index points at a missing letter")
				continue
			}
			var letter models.Letter
			if err := json.Unmarshal(data, &letter); err != nil {
				return fmt.Errorf("decode letter %s: %w", id, err)
			}
			letters = append(letters, letter)
		}
		return nil
	})
	if err != nil {
		return nil, utils.StorageError("Failed to load letters", err)
	}

	return letters, nil
}

// Create validates input and stores the new letter and its index entry in one transaction
func (s *BoltStorage) Create(ctx context.Context, in models.NewLetter) (*models.Letter, error) {
	letter, err := prepareLetter(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.StorageError("Failed to save letter", err)
	}

	if err := s.add(letter); err != nil {
		return nil, utils.StorageError("Failed to save letter", err)
	}
	return letter, nil
}

// MarkReceived flips the received flag of an existing letter
func (s *BoltStorage) MarkReceived(ctx context.Context, id string) (*models.Letter, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	return s.update(id, func(letter *models.Letter) {
		letter.Received = true
	})
}

func (s *BoltStorage) add(letter *models.Letter) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(letterBucket))
		if b.Get([]byte(letter.ID)) != nil {
			return fmt.Errorf("letter %s already exists", letter.ID)
		}

		data, err := json.Marshal(letter)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(letter.ID), data); err != nil {
			return err
		}
		return tx.Bucket([]byte(replyDateBucket)).Put(replyDateKey(letter), []byte(letter.ID))
	})
}

// update merges changes into the stored letter, failing when the id is unknown.
// The reply date index is rewritten if the date moved.
func (s *BoltStorage) update(id string, apply func(*models.Letter)) (*models.Letter, error) {
	var updated models.Letter
	var missing bool

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(letterBucket))
		data := b.Get([]byte(id))
		if data == nil {
			missing = true
			return nil
		}

		if err := json.Unmarshal(data, &updated); err != nil {
			return fmt.Errorf("decode letter %s: %w", id, err)
		}
		oldKey := replyDateKey(&updated)

		apply(&updated)
		updated.ID = id

		data, err := json.Marshal(&updated)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(id), data); err != nil {
			return err
		}

		index := tx.Bucket([]byte(replyDateBucket))
		if newKey := replyDateKey(&updated); string(newKey) != string(oldKey) {
			if err := index.Delete(oldKey); err != nil {
				return err
			}
			return index.Put(newKey, []byte(id))
		}
		return nil
	})
	if err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	if missing {
		return nil, notFound(id)
	}

	return &updated, nil
}
