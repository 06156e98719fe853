package handlers

import (
	"encoding/json"
	"net/http"

	"inkwell/internal/autosave"
	"inkwell/internal/content"
	"inkwell/internal/middleware"
)

// Autosave handles the draft buffer endpoints.
type Autosave struct {
	sched *autosave.Scheduler
}

// NewAutosave creates the autosave handler group.
func NewAutosave(sched *autosave.Scheduler) *Autosave {
	return &Autosave{sched: sched}
}

// scheduleRequest is the JSON body accepted by Schedule.
type scheduleRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// resolveRequest is the JSON body accepted by Resolve.
type resolveRequest struct {
	Resolution string `json:"resolution"`
	MergedBody string `json:"merged_body"`
}

// Schedule handles POST /api/documents/{id}/autosave: it buffers the edit
// and returns immediately; persistence happens asynchronously.
func (h *Autosave) Schedule(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	// Bounds are enforced here, not just at persist time: an over-limit
	// buffer would fail validation on every retry.
	if err := content.ValidateDraft(req.Title, req.Body); err != nil {
		writeError(w, err)
		return
	}

	status := h.sched.Schedule(key, req.Title, req.Body)
	writeJSON(w, http.StatusAccepted, status)
}

// Status handles GET /api/documents/{id}/autosave.
func (h *Autosave) Status(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.sched.Status(key))
}

// Force handles POST /api/documents/{id}/autosave/force: it persists the
// buffer synchronously, bypassing the throttle.
func (h *Autosave) Force(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}
	status := h.sched.ForceSave(key)
	if status.State == autosave.StateEmpty {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no draft buffered"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Resolve handles POST /api/documents/{id}/autosave/resolve, applying one
// of the keep_local, keep_remote, or merge strategies to a conflicted draft.
func (h *Autosave) Resolve(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	status, err := h.sched.Resolve(r.Context(), key, req.Resolution, req.MergedBody)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// key builds the draft buffer key from the URL and the authenticated user.
func (h *Autosave) key(w http.ResponseWriter, r *http.Request) (autosave.Key, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return autosave.Key{}, false
	}
	return autosave.Key{
		UserID:     middleware.UserFromCtx(r.Context()),
		DocumentID: id,
	}, true
}
