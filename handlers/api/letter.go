package api

import (
	"lettertrack/models"
	"lettertrack/storage"
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
)

// LetterHandler serves the letters JSON API
type LetterHandler struct {
	storage storage.LetterStore
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(letterStorage storage.LetterStore) *LetterHandler {
	return &LetterHandler{
		storage: letterStorage,
	}
}

// Register mounts the letter routes on r
func (h *LetterHandler) Register(r fiber.Router) {
	r.Get("/letters", h.ListLetters)
	r.Post("/letters", h.CreateLetter)
	r.Patch("/letters/:id", h.MarkReceived)
}

// ListLetters returns all letters sorted by expected reply date
func (h *LetterHandler) ListLetters(c *fiber.Ctx) error {
	letters, err := h.storage.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(letters)
}

// CreateLetter stores a new letter from a JSON body.
// Dates should be plain "2006-01-02" values; a timestamp is read as the day in its own offset.
func (h *LetterHandler) CreateLetter(c *fiber.Ctx) error {
	var req models.NewLetter
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationError("Invalid request", err)
	}

	letter, err := h.storage.Create(c.UserContext(), req)
	if err != nil {
		return err
	}

	utils.Log.WithField("id", letter.ID).Info("Letter %s from %s created", letter.LetterNumber, letter.SenderName)
	return c.JSON(letter)
}

// MarkReceived flags a letter as received
func (h *LetterHandler) MarkReceived(c *fiber.Ctx) error {
	id := c.Params("id")

	letter, err := h.storage.MarkReceived(c.UserContext(), id)
	if err != nil {
		return err
	}

	utils.Log.WithField("id", id).Info("Letter marked as received")
	return c.JSON(letter)
}
