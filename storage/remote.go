package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lettertrack/models"
	"lettertrack/utils"

	"github.com/valyala/fasthttp"
)

const lettersPath = "/api/letters"

// RemoteOptions configures a RemoteStorage
type RemoteOptions struct {
	BaseURL     string        // e.g. http://letters.internal:3000
	Timeout     time.Duration // per request; defaults to 10s
	TokenSecret string        // signs bearer tokens when set
	Dial        fasthttp.DialFunc
}

// RemoteStorage talks to another lettertrack instance over its JSON API
type RemoteStorage struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	secret  string
}

// NewRemote creates a client for the letters API at opts.BaseURL
func NewRemote(opts RemoteOptions) (*RemoteStorage, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid remote base url %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RemoteStorage{
		client: &fasthttp.Client{
			Name:         "lettertrack",
			Dial:         opts.Dial,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: base,
		timeout: timeout,
		secret:  opts.TokenSecret,
	}, nil
}

// Close drops idle connections
func (s *RemoteStorage) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// ListAll fetches GET /api/letters
func (s *RemoteStorage) ListAll(ctx context.Context) ([]models.Letter, error) {
	letters := []models.Letter{}
	if err := s.do(ctx, fasthttp.MethodGet, lettersPath, nil, &letters); err != nil {
		return nil, err
	}
	return letters, nil
}

// Create validates locally, then posts the normalized fields
func (s *RemoteStorage) Create(ctx context.Context, in models.NewLetter) (*models.Letter, error) {
	letter, err := normalize(in)
	if err != nil {
		return nil, err
	}

	body := models.NewLetter{
		LetterNumber:      letter.LetterNumber,
		SenderName:        letter.SenderName,
		Subject:           letter.Subject,
		DateSent:          utils.FormatDate(letter.DateSent),
		ExpectedReplyDate: utils.FormatDate(letter.ExpectedReplyDate),
		SectionNumber:     letter.SectionNumber,
	}

	var created models.Letter
	if err := s.do(ctx, fasthttp.MethodPost, lettersPath, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MarkReceived sends PATCH /api/letters/:id
func (s *RemoteStorage) MarkReceived(ctx context.Context, id string) (*models.Letter, error) {
	if strings.TrimSpace(id) == "" {
		return nil, notFound(id)
	}

	var updated models.Letter
	if err := s.do(ctx, fasthttp.MethodPatch, lettersPath+"/"+url.PathEscape(id), nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RemoteStorage) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return utils.StorageError("Letter service unavailable", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return utils.StorageError("Failed to encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	if s.secret != "" {
		token, err := utils.IssueAPIToken(s.secret, "lettertrack-web", time.Minute)
		if err != nil {
			return utils.StorageError("Failed to sign request", err)
		}
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return utils.StorageError("Letter service unavailable", fmt.Errorf("%s %s: %w", method, path, err))
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		return remoteError(status, resp.Body())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return utils.StorageError("Invalid response from letter service", err)
	}
	return nil
}

// remoteError maps an API error response back onto the local error taxonomy
func remoteError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error

	switch status {
	case fasthttp.StatusBadRequest:
		if msg == "" {
			msg = "Invalid letter"
		}
		return utils.ValidationError(msg, nil)
	case fasthttp.StatusNotFound:
		if msg == "" {
			msg = "Letter not found"
		}
		return utils.NotFoundError(msg, nil)
	default:
		if msg == "" {
			msg = "Letter service error"
		}
		return utils.StorageError(msg, fmt.Errorf("remote status %d", status))
	}
}
