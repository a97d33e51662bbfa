package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/models"
	"github.com/bearslyricattack/CompliAd/pkg/pipeline"
	"github.com/bearslyricattack/CompliAd/pkg/store"
)

// maxMultipartMemory caps the in-memory share of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// Auditor runs one audit.
type Auditor interface {
	Audit(ctx context.Context, input models.Input, opts models.Options) (*models.Report, error)
}

// HistoryStore reads persisted audits back.
type HistoryStore interface {
	Get(ctx context.Context, id string) (*models.AuditRecord, error)
	List(ctx context.Context, userID string, limit, skip int) ([]*models.AuditRecord, error)
}

// Handler implements the HTTP surface. Authentication is external; the
// user id arrives on the X-User-ID header (or form/json field) and is
// passed through to the pipeline.
type Handler struct {
	auditor Auditor
	history HistoryStore // nil when persistence is off
	log     logger.Logger
}

// NewHandler creates the handler.
func NewHandler(auditor Auditor, history HistoryStore) *Handler {
	return &Handler{
		auditor: auditor,
		history: history,
		log:     logger.GetLogger().WithField("component", "api"),
	}
}

type auditRequest struct {
	Text         string `json:"text"`
	URL          string `json:"url"`
	UserID       string `json:"userId"`
	Category     string `json:"category"`
	AnalysisMode string `json:"analysisMode"`
	Country      string `json:"country"`
	Region       string `json:"region"`
}

// CreateAudit accepts either JSON {text|url} or multipart/form-data
// with a single "file" part and audits the content.
func (h *Handler) CreateAudit(w http.ResponseWriter, r *http.Request) {
	var (
		input models.Input
		opts  models.Options
		err   error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		input, opts, err = h.parseMultipart(r)
	} else {
		input, opts, err = h.parseJSON(r)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if opts.UserID == "" {
		opts.UserID = r.Header.Get("X-User-ID")
	}

	rep, err := h.auditor.Audit(r.Context(), input, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rep)
}

// GetAudit returns one persisted audit record.
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "persistence disabled"})
		return
	}
	record, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// GetHistory lists the caller's audit history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "persistence disabled"})
		return
	}
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, pipeline.ErrUnauthenticated)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	records, err := h.history.List(r.Context(), userID, limit, skip)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) parseJSON(r *http.Request) (models.Input, models.Options, error) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.Input{}, models.Options{}, pipeline.ErrInputInvalid
	}
	input := models.Input{Text: req.Text, URL: req.URL}
	opts := models.Options{
		UserID:       req.UserID,
		Category:     req.Category,
		AnalysisMode: req.AnalysisMode,
		Jurisdiction: models.Jurisdiction{Country: req.Country, Region: req.Region},
	}
	return input, opts, nil
}

func (h *Handler) parseMultipart(r *http.Request) (models.Input, models.Options, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return models.Input{}, models.Options{}, pipeline.ErrInputInvalid
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return models.Input{}, models.Options{}, pipeline.ErrInputInvalid
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Input{}, models.Options{}, pipeline.ErrInputInvalid
	}
	mime := header.Header.Get("Content-Type")

	input := models.Input{File: &models.FileInput{
		Bytes:    data,
		Filename: header.Filename,
		MIME:     mime,
	}}
	opts := models.Options{
		UserID:       r.FormValue("userId"),
		Category:     r.FormValue("category"),
		AnalysisMode: r.FormValue("analysisMode"),
		Jurisdiction: models.Jurisdiction{
			Country: r.FormValue("country"),
			Region:  r.FormValue("region"),
		},
	}
	return input, opts, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", logger.Fields{"error": err.Error()})
	}
}

// writeError maps the pipeline error taxonomy to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrInputInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, pipeline.ErrPayloadTooLarge), errors.Is(err, pipeline.ErrTextTooLong):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrExtractionExhausted):
		status = http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status >= 500 {
		h.log.Error("Request failed", logger.Fields{"status": status, "error": err.Error()})
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
