package storage

import (
	"context"
	"testing"
	"time"

	"lettertrack/models"
	"lettertrack/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id TEXT);\n", upSection(content))
	assert.Equal(t, "CREATE TABLE b (id TEXT);", upSection("CREATE TABLE b (id TEXT);"))
	assert.Equal(t, "\nCREATE TABLE c (id TEXT);", upSection("-- +migrate Up\nCREATE TABLE c (id TEXT);"))
}

func TestPrepareLetterAssignsOrderedIDs(t *testing.T) {
	in := models.NewLetter{
		LetterNumber:      "1",
		SenderName:        "Sender",
		Subject:           "Subject",
		DateSent:          "2024-03-01",
		ExpectedReplyDate: "2024-03-02",
		SectionNumber:     "2",
	}
	a, err := prepareLetter(in)
	require.NoError(t, err)
	b, err := prepareLetter(in)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)
	assert.False(t, a.Received)
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	err := Validate(models.NewLetter{DateSent: "2024-03-01", ExpectedReplyDate: "2024-03-02"})
	require.Error(t, err)
	assert.True(t, utils.IsValidation(err))
	assert.Contains(t, err.Error(), "letter number, sender name, subject, section number")
}

func TestBoltUpdateMovesReplyDateIndex(t *testing.T) {
	s, err := OpenBolt(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	early, err := s.Create(ctx, models.NewLetter{
		LetterNumber: "early", SenderName: "S", Subject: "S", SectionNumber: "1",
		DateSent: "2024-03-01", ExpectedReplyDate: "2024-03-05",
	})
	require.NoError(t, err)
	late, err := s.Create(ctx, models.NewLetter{
		LetterNumber: "late", SenderName: "S", Subject: "S", SectionNumber: "1",
		DateSent: "2024-03-01", ExpectedReplyDate: "2024-03-10",
	})
	require.NoError(t, err)

	_, err = s.update(early.ID, func(l *models.Letter) {
		l.ExpectedReplyDate = time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)

	letters, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 2)
	assert.Equal(t, late.ID, letters[0].ID)
	assert.Equal(t, early.ID, letters[1].ID)
}

func TestBoltListAllHonorsCancelledContext(t *testing.T) {
	s, err := OpenBolt(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ListAll(ctx)
	assert.Error(t, err)
}
