package adapter

import (
	"book-tracker/internal/core"
	"book-tracker/internal/core/model"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// StatusError is any non-2xx answer of the library API.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("library: %s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is makes every StatusError match model.ErrUpstream, and 404s model.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case model.ErrUpstream:
		return true
	case model.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// LibraryClient talks to the remote book/notes/stats API.
type LibraryClient struct {
	BaseURL string
	Client  *http.Client
}

func NewLibraryClient(baseURL string, httpClient *http.Client) *LibraryClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LibraryClient{BaseURL: strings.TrimRight(baseURL, "/"), Client: httpClient}
}

var (
	_ core.Gateway  = (*LibraryClient)(nil)
	_ core.Uploader = (*LibraryClient)(nil)
)

func (c *LibraryClient) ListBooks(ctx context.Context) ([]model.Book, error) {
	var out []model.Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Book{}
	}
	return out, nil
}

func (c *LibraryClient) GetBook(ctx context.Context, id int) (model.Book, error) {
	var out model.Book
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &out)
	return out, err
}

func (c *LibraryClient) CreateBook(ctx context.Context, in model.BookInput) (model.Book, error) {
	var out model.Book
	err := c.do(ctx, http.MethodPost, "/books", in, &out)
	return out, err
}

func (c *LibraryClient) UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error) {
	var out model.Book
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), patch, &out)
	return out, err
}

func (c *LibraryClient) DeleteBook(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil)
}

func (c *LibraryClient) ListNotes(ctx context.Context, bookID int) ([]model.Note, error) {
	var out []model.Note
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d/notes", bookID), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Note{}
	}
	return out, nil
}

func (c *LibraryClient) CreateNote(ctx context.Context, bookID int, in model.NoteInput) (model.Note, error) {
	var out model.Note
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/books/%d/notes", bookID), in, &out)
	return out, err
}

func (c *LibraryClient) GetStats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &out)
	return out, err
}

// UploadImage sends the image behind localRef as the "image" multipart field.
func (c *LibraryClient) UploadImage(ctx context.Context, localRef string) (model.UploadResult, error) {
	path, err := core.PathFromLocalRef(localRef)
	if err != nil {
		return model.UploadResult{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("read image: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	filename := filepath.Base(path)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	hdr.Set("Content-Type", imageContentType(data, filename))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return model.UploadResult{}, err
	}
	if _, err := part.Write(data); err != nil {
		return model.UploadResult{}, err
	}
	if err := mw.Close(); err != nil {
		return model.UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return model.UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out model.UploadResult
	if err := c.send(req, "/upload", &out); err != nil {
		return model.UploadResult{}, err
	}
	return out, nil
}

// imageContentType sniffs the bytes and falls back to the file extension.
func imageContentType(data []byte, filename string) string {
	if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return "image/" + strings.ToLower(ext)
	}
	return "image/jpeg"
}

func (c *LibraryClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

func (c *LibraryClient) send(req *http.Request, path string, out any) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("library: %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: req.Method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("library: decode %s %s: %w", req.Method, path, err)
	}
	return nil
}
