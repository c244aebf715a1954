package adapter

import (
	"book-tracker/internal/core/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

const maxUploadBytes = 10 << 20

// Handler serves the library API contract over an in-memory BookRepo.
// It stands in for the remote service during development and tests.
type Handler struct {
	Repo      *BookRepo
	UploadDir string
	// PublicURL prefixes returned upload URLs; derived from the request when empty.
	PublicURL string
	log       *slog.Logger
}

func NewHandler(repo *BookRepo, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Repo: repo, UploadDir: uploadDir, log: logger}
}

// Routes wires the handler into a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, h.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.ListBooks)
		r.Post("/", h.CreateBook)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetBook)
			r.Put("/", h.UpdateBook)
			r.Delete("/", h.DeleteBook)
			r.Get("/notes", h.ListNotes)
			r.Post("/notes", h.CreateNote)
		})
	})
	r.Get("/stats", h.Stats)
	r.Post("/upload", h.Upload)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadDir))))
	return r
}

type httpError struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]interface{}) {
	e := httpError{}
	e.Error.Code = code
	e.Error.Message = msg
	e.Error.Details = details
	writeJSON(w, status, e)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "book not found", nil)
	case errors.Is(err, errInvalid):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		h.log.Error("repository error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func bindID(r *http.Request) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return id, err
}

func (h *Handler) withID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := bindID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error(), nil)
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return false
	}
	return true
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Repo.List(r.Context())
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in model.BookInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "name is required",
			map[string]interface{}{"field": "name"})
		return
	}
	b, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/books/%d", b.ID))
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	b, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var p model.BookPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	b, err := h.Repo.Update(r.Context(), id, p)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	notes, err := h.Repo.ListNotes(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var in model.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.Repo.AddNote(r.Context(), id, in.Content)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Repo.Stats(r.Context())
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Upload stores one image sent in the "image" multipart field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, msg string) {
		writeJSON(w, status, model.UploadResult{Success: boolPtr(false), Error: msg})
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		fail(http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil || !strings.HasPrefix(mt.String(), "image/") {
		fail(http.StatusUnsupportedMediaType, "file is not an image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		fail(http.StatusInternalServerError, "cannot read upload")
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.log.Error("create upload dir", "dir", h.UploadDir, "error", err)
		fail(http.StatusInternalServerError, "cannot store upload")
		return
	}
	name := uuid.NewString() + mt.Extension()
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		h.log.Error("create upload file", "error", err)
		fail(http.StatusInternalServerError, "cannot store upload")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		h.log.Error("write upload file", "error", err)
		fail(http.StatusInternalServerError, "cannot store upload")
		return
	}

	writeJSON(w, http.StatusOK, model.UploadResult{
		URL:      h.publicBase(r) + "/uploads/" + name,
		Filename: name,
		Success:  boolPtr(true),
	})
}

func (h *Handler) publicBase(r *http.Request) string {
	if h.PublicURL != "" {
		return strings.TrimRight(h.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("access",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func boolPtr(b bool) *bool { return &b }
