package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/content"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Documents handles the document CRUD and version history endpoints.
type Documents struct {
	svc *content.Service
}

// NewDocuments creates the document handler group.
func NewDocuments(svc *content.Service) *Documents {
	return &Documents{svc: svc}
}

// createRequest is the JSON body accepted by Create.
type createRequest struct {
	Title           string                `json:"title"`
	Body            string                `json:"body"`
	MetaDescription *string               `json:"meta_description"`
	MetaKeywords    *string               `json:"meta_keywords"`
	Status          models.DocumentStatus `json:"status"`
}

// patchRequest is the JSON body accepted by Update. Absent fields stay
// untouched; an explicit empty string clears meta description or keywords.
type patchRequest struct {
	Title           *string                `json:"title"`
	Body            *string                `json:"body"`
	MetaDescription *string                `json:"meta_description"`
	MetaKeywords    *string                `json:"meta_keywords"`
	Status          *models.DocumentStatus `json:"status"`
	ChangeSummary   string                 `json:"change_summary"`
}

// listResponse wraps a document page with its pre-pagination total.
type listResponse struct {
	Items   []models.Document `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// Create handles POST /api/documents.
func (h *Documents) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	doc, err := h.svc.Create(r.Context(), middleware.UserFromCtx(r.Context()), content.CreateInput{
		Title:           req.Title,
		Body:            req.Body,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/documents with query/status/sort/pagination params.
func (h *Documents) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ListFilter{
		Query:    q.Get("q"),
		Status:   models.DocumentStatus(q.Get("status")),
		SortBy:   q.Get("sort"),
		SortDesc: q.Get("order") == "desc",
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeBadRequest(w, "unknown status filter")
		return
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	items, total, err := h.svc.List(middleware.UserFromCtx(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

// Get handles GET /api/documents/{id}.
func (h *Documents) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Get(r.Context(), id, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Update handles PATCH /api/documents/{id}.
func (h *Documents) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	doc, err := h.svc.Update(r.Context(), id, middleware.UserFromCtx(r.Context()), content.Patch{
		Title:           req.Title,
		Body:            req.Body,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		Status:          req.Status,
	}, req.ChangeSummary)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/{id}.
func (h *Documents) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, content.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions handles GET /api/documents/{id}/versions.
func (h *Documents) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	versions, err := h.svc.ListVersions(id, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// GetVersion handles GET /api/documents/{id}/versions/{number}.
func (h *Documents) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	number, ok := pathVersion(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetVersion(id, middleware.UserFromCtx(r.Context()), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Rollback handles POST /api/documents/{id}/versions/{number}/rollback.
func (h *Documents) Rollback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	number, ok := pathVersion(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Rollback(r.Context(), id, middleware.UserFromCtx(r.Context()), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

// pathVersion parses the {number} URL parameter, writing a 400 on failure.
func pathVersion(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || n < 1 {
		writeBadRequest(w, "invalid version number")
		return 0, false
	}
	return n, true
}
