package web

import (
	"net/url"
	"time"

	"lettertrack/models"
	"lettertrack/storage"
	"lettertrack/tracker"
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
)

// LetterHandler renders the letter list and handles the form actions.
// Every action is followed by a redirect so the list is always re-fetched.
type LetterHandler struct {
	storage storage.LetterStore
	now     func() time.Time
}

// NewLetterHandler creates a new letter page handler
func NewLetterHandler(letterStorage storage.LetterStore) *LetterHandler {
	return &LetterHandler{
		storage: letterStorage,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to decide what is overdue
func (h *LetterHandler) WithClock(now func() time.Time) *LetterHandler {
	h.now = now
	return h
}

// Register mounts the page routes on r
func (h *LetterHandler) Register(r fiber.Router) {
	r.Get("/", h.HandleIndex)
	r.Post("/letters", h.HandleCreate)
	r.Post("/letters/:id/received", h.HandleMarkReceived)
}

type viewTab struct {
	Name    string
	LabelID string
	Count   int
	Active  bool
}

type letterItem struct {
	models.Letter
	Status string
}

var tabLabels = map[string]string{
	tracker.ViewAll:      "tab_all",
	tracker.ViewToday:    "tab_today",
	tracker.ViewOverdue:  "tab_overdue",
	tracker.ViewUpcoming: "tab_upcoming",
	tracker.ViewReceived: "tab_received",
}

var notices = map[string]string{
	"added":    "message_letter_added",
	"received": "message_letter_received",
}

// HandleIndex renders the tabbed letter list
func (h *LetterHandler) HandleIndex(c *fiber.Ctx) error {
	view := tracker.NormalizeView(c.Query("view"))
	return h.render(c, fiber.StatusOK, view, models.NewLetter{}, "", notices[c.Query("notice")])
}

// HandleCreate adds a letter from the form
func (h *LetterHandler) HandleCreate(c *fiber.Ctx) error {
	view := tracker.NormalizeView(c.FormValue("view"))

	var form models.NewLetter
	if err := c.BodyParser(&form); err != nil {
		return h.render(c, fiber.StatusBadRequest, view, form, "error_required_fields", "")
	}

	// The form is checked before anything is sent to the backend
	if err := storage.Validate(form); err != nil {
		return h.render(c, fiber.StatusBadRequest, view, form, "error_required_fields", "")
	}

	letter, err := h.storage.Create(c.UserContext(), form)
	if err != nil {
		utils.Log.Error("Failed to create letter: %v", err)
		return h.render(c, utils.ErrorCode(err), view, form, messageFor(err), "")
	}

	utils.Log.WithField("id", letter.ID).Info("Letter %s added", letter.LetterNumber)
	return c.Redirect(pageURL(view, "added"), fiber.StatusSeeOther)
}

// HandleMarkReceived flags a letter as received and returns to the current tab
func (h *LetterHandler) HandleMarkReceived(c *fiber.Ctx) error {
	view := tracker.NormalizeView(c.FormValue("view"))
	id := c.Params("id")

	if _, err := h.storage.MarkReceived(c.UserContext(), id); err != nil {
		utils.Log.WithField("id", id).Error("Failed to mark letter as received: %v", err)
		return h.render(c, utils.ErrorCode(err), view, models.NewLetter{}, messageFor(err), "")
	}

	return c.Redirect(pageURL(view, "received"), fiber.StatusSeeOther)
}

func (h *LetterHandler) render(c *fiber.Ctx, status int, view string, form models.NewLetter, errorID, noticeID string) error {
	lang, _ := c.Locals("lang").(string)
	if lang == "" {
		lang = "en"
	}

	letters, err := h.storage.ListAll(c.UserContext())
	if err != nil {
		utils.Log.Error("Failed to load letters: %v", err)
		letters = nil
		errorID = messageFor(err)
		status = utils.ErrorCode(err)
	}

	now := h.now()
	buckets := tracker.Classify(now, letters)
	counts := buckets.Counts()

	tabs := make([]viewTab, 0, len(tracker.Views))
	for _, name := range tracker.Views {
		tabs = append(tabs, viewTab{
			Name:    name,
			LabelID: tabLabels[name],
			Count:   counts[name],
			Active:  name == view,
		})
	}

	selected := buckets.View(view)
	items := make([]letterItem, 0, len(selected))
	for _, l := range selected {
		items = append(items, letterItem{Letter: l, Status: tracker.StatusOf(now, l).String()})
	}

	return c.Status(status).Render("index", fiber.Map{
		"Lang":      lang,
		"View":      view,
		"Tabs":      tabs,
		"Letters":   items,
		"Form":      form,
		"Error":     errorID,
		"Notice":    noticeID,
		"CSRFToken": c.Locals("csrf"),
	})
}

// messageFor picks the generic message shown for a failed operation
func messageFor(err error) string {
	switch {
	case utils.IsValidation(err):
		return "error_required_fields"
	case utils.IsNotFound(err):
		return "error_not_found"
	default:
		return "error_generic"
	}
}

func pageURL(view, notice string) string {
	q := url.Values{}
	if view != tracker.ViewAll {
		q.Set("view", view)
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
