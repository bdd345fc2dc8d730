package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"lettertrack/models"
	"lettertrack/storage"
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*fiber.App, storage.LetterStore) {
	t.Helper()
	require.NoError(t, utils.InitI18n("../../locales"))

	store, err := storage.OpenBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app := fiber.New(fiber.Config{
		Views:       NewViews("../../templates", false),
		ViewsLayout: "layouts/main",
	})
	NewLetterHandler(store).WithClock(func() time.Time { return today }).Register(app)
	return app, store
}

func seed(t *testing.T, store storage.LetterStore, number, due string) *models.Letter {
	t.Helper()
	l, err := store.Create(context.Background(), models.NewLetter{
		LetterNumber:      number,
		SenderName:        "Sender " + number,
		Subject:           "Subject " + number,
		DateSent:          "2024-03-01",
		ExpectedReplyDate: due,
		SectionNumber:     "5",
	})
	require.NoError(t, err)
	return l
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func validForm() url.Values {
	return url.Values{
		"letterNumber":      {"N-1"},
		"senderName":        {"City Council"},
		"subject":           {"Zoning request"},
		"sectionNumber":     {"2"},
		"dateSent":          {"2024-03-10"},
		"expectedReplyDate": {"2024-03-20"},
	}
}

func TestIndexShowsEveryBucket(t *testing.T) {
	app, store := setup(t)
	seed(t, store, "OVD", "2024-03-14")
	seed(t, store, "TDY", "2024-03-15")
	seed(t, store, "UPC", "2024-03-16")
	rcv := seed(t, store, "RCV", "2024-03-01")
	_, err := store.MarkReceived(context.Background(), rcv.ID)
	require.NoError(t, err)

	status, body := get(t, app, "/")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "All Pending (3)")
	assert.Contains(t, body, "Due Today (1)")
	assert.Contains(t, body, "Overdue (1)")
	assert.Contains(t, body, "Upcoming (1)")
	assert.Contains(t, body, "Received (1)")

	assert.Contains(t, body, `data-status="overdue"`)
	assert.Contains(t, body, `data-status="today"`)
	assert.Contains(t, body, `data-status="upcoming"`)
	assert.NotContains(t, body, "Letter #RCV")
	assert.Contains(t, body, "March 14th, 2024")
	assert.Contains(t, body, "3 letters")
}

func TestIndexEscapesLetterText(t *testing.T) {
	app, store := setup(t)
	_, err := store.Create(context.Background(), models.NewLetter{
		LetterNumber:      "R-12",
		SenderName:        "Acme Ltd <info@acme.com>",
		Subject:           "<script>alert(1)</script> & more",
		DateSent:          "2024-03-01",
		ExpectedReplyDate: "2024-03-20",
		SectionNumber:     "5",
	})
	require.NoError(t, err)

	status, body := get(t, app, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Acme Ltd &lt;info@acme.com&gt;")
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestIndexFiltersByView(t *testing.T) {
	app, store := setup(t)
	seed(t, store, "OVD", "2024-03-14")
	seed(t, store, "UPC", "2024-03-16")
	rcv := seed(t, store, "RCV", "2024-03-01")
	_, err := store.MarkReceived(context.Background(), rcv.ID)
	require.NoError(t, err)

	_, body := get(t, app, "/?view=overdue")
	assert.Contains(t, body, "Letter #OVD")
	assert.NotContains(t, body, "Letter #UPC")

	_, body = get(t, app, "/?view=today")
	assert.Contains(t, body, "No letters found")

	_, body = get(t, app, "/?view=received")
	assert.Contains(t, body, "Letter #RCV")
	assert.Contains(t, body, `data-status="received"`)
	assert.NotContains(t, body, "Mark as Received")
}

func TestCreateRedirectsAndPersists(t *testing.T) {
	app, store := setup(t)

	form := validForm()
	form.Set("view", "upcoming")
	resp := postForm(t, app, "/letters", form)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?notice=added&view=upcoming", resp.Header.Get("Location"))

	letters, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "City Council", letters[0].SenderName)

	_, body := get(t, app, "/?view=upcoming&notice=added")
	assert.Contains(t, body, "Letter added")
	assert.Contains(t, body, "Letter #N-1")
}

func TestCreateWithMissingFieldKeepsForm(t *testing.T) {
	app, store := setup(t)

	form := validForm()
	form.Set("senderName", "")
	resp := postForm(t, app, "/letters", form)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please fill in every field and pick both dates.")
	assert.Contains(t, body, `value="Zoning request"`)

	letters, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestCreateWithoutDates(t *testing.T) {
	app, store := setup(t)

	form := validForm()
	form.Del("expectedReplyDate")
	resp := postForm(t, app, "/letters", form)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	letters, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestMarkReceivedRefreshesList(t *testing.T) {
	app, store := setup(t)
	l := seed(t, store, "TDY", "2024-03-15")

	resp := postForm(t, app, "/letters/"+l.ID+"/received", url.Values{"view": {"today"}})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?notice=received&view=today", resp.Header.Get("Location"))

	_, body := get(t, app, "/?view=today")
	assert.Contains(t, body, "No letters found")
	assert.Contains(t, body, "Received (1)")
}

func TestMarkReceivedUnknownLetter(t *testing.T) {
	app, _ := setup(t)

	resp := postForm(t, app, "/letters/missing/received", url.Values{})
	body := readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Letter not found")
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/", pageURL("all", ""))
	assert.Equal(t, "/?notice=added", pageURL("all", "added"))
	assert.Equal(t, "/?view=overdue", pageURL("overdue", ""))
}
