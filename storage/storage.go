// Package storage persists letters. Every backend satisfies LetterStore with the
// same semantics, so the web layer does not care which one is active.
package storage

import (
	"context"
	"fmt"
	"strings"

	"lettertrack/models"
	"lettertrack/utils"

	"github.com/google/uuid"
)

// Backend names accepted in configuration
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendRemote = "remote"
)

// LetterStore is the persistence contract shared by all backends.
//
// ListAll returns letters ascending by expected reply date, ties in creation order.
// Create rejects invalid input with a validation error before anything is written.
// MarkReceived returns a not-found error for unknown ids.
type LetterStore interface {
	ListAll(ctx context.Context) ([]models.Letter, error)
	Create(ctx context.Context, in models.NewLetter) (*models.Letter, error)
	MarkReceived(ctx context.Context, id string) (*models.Letter, error)
	Close() error
}

// prepareLetter validates and normalizes input into a letter ready to persist.
// The id is a UUIDv7 so ids sort in creation order.
func prepareLetter(in models.NewLetter) (*models.Letter, error) {
	letter, err := normalize(in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, utils.StorageError("Failed to create letter", fmt.Errorf("generate id: %w", err))
	}
	letter.ID = id.String()
	return letter, nil
}

// normalize trims text fields and parses dates without assigning an id.
// Text is stored as typed; templates escape it on output.
func normalize(in models.NewLetter) (*models.Letter, error) {
	letter := &models.Letter{
		LetterNumber:  strings.TrimSpace(in.LetterNumber),
		SenderName:    strings.TrimSpace(in.SenderName),
		Subject:       strings.TrimSpace(in.Subject),
		SectionNumber: strings.TrimSpace(in.SectionNumber),
	}

	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"letter number", letter.LetterNumber},
		{"sender name", letter.SenderName},
		{"subject", letter.Subject},
		{"section number", letter.SectionNumber},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, utils.ValidationError("All fields are required", fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	sent, err := utils.ParseDate(in.DateSent)
	if err != nil {
		return nil, utils.ValidationError("Date sent is missing or invalid", err)
	}
	due, err := utils.ParseDate(in.ExpectedReplyDate)
	if err != nil {
		return nil, utils.ValidationError("Expected reply date is missing or invalid", err)
	}
	letter.DateSent = sent
	letter.ExpectedReplyDate = due

	return letter, nil
}

// Validate reports whether in would be accepted by Create
func Validate(in models.NewLetter) error {
	_, err := normalize(in)
	return err
}

func notFound(id string) error {
	return utils.NotFoundError("Letter not found", nil).WithContext("id", id)
}
