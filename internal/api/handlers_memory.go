package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/echonote/echonote/internal/api/respond"
	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/pipeline"
	"github.com/echonote/echonote/internal/services"
)

// maxUploadBytes caps the multipart form size for recordings.
const maxUploadBytes = 25 << 20

// MemoryHandler serves the /memory endpoints.
type MemoryHandler struct {
	svc  *services.MemoryService
	pipe *pipeline.Pipeline
}

func NewMemoryHandler(svc *services.MemoryService, pipe *pipeline.Pipeline) *MemoryHandler {
	return &MemoryHandler{svc: svc, pipe: pipe}
}

// CreateMemory POST /memory
// Runs the full capture pipeline on the uploaded audio.
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.WriteBadRequest(w, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		respond.WriteBadRequest(w, "Missing form field: audio")
		return
	}
	defer func() { _ = file.Close() }()

	audio, err := io.ReadAll(file)
	if err != nil {
		respond.WriteInternalError(w, "Server error", "reading upload: "+err.Error())
		return
	}

	card, fail := h.pipe.Run(r.Context(), audio, header.Header.Get("Content-Type"))
	if fail != nil {
		writePipelineFailure(w, fail)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, card)
}

// writePipelineFailure maps a pipeline failure onto the HTTP surface.
// The pipeline owns the retryable/server-fault distinction; the handler
// only chooses the user-facing message.
func writePipelineFailure(w http.ResponseWriter, fail *pipeline.Failure) {
	if !fail.UserRetryable() {
		respond.WriteInternalError(w, "Server error", fail.Error())
		return
	}
	msg := "Empty transcription. Try again."
	if fail.Reason == pipeline.ReasonEmptyAudio {
		msg = "Audio looks empty/silent. Try again."
	}
	respond.WriteBadRequest(w, msg)
}

// ListMemories GET /memory?limit=N
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	out, err := h.svc.List(r.Context(), limit)
	if err != nil {
		respond.WriteInternalError(w, "Failed to fetch memories", err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

// GetMemory GET /memory/{id}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	out, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeCardError(w, err, "Failed to fetch memory")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// patchRequest is the PATCH body: either an action-item mutation keyed by
// "action", or a free-form partial field update.
type patchRequest struct {
	Action      string  `json:"action,omitempty"`
	ActionIndex *int    `json:"actionIndex,omitempty"`
	Text        *string `json:"text,omitempty"`

	model.UpdateCardRequest
}

// PatchMemory PATCH /memory/{id}
func (h *MemoryHandler) PatchMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.applyPatch(r, id, req)
	if err != nil {
		writeCardError(w, err, "Failed to update memory")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

var errBadPatch = errors.New("bad patch request")

func (h *MemoryHandler) applyPatch(r *http.Request, id string, req patchRequest) (*model.MemoryCard, error) {
	ctx := r.Context()
	switch req.Action {
	case "toggle_complete":
		if req.ActionIndex == nil {
			return nil, errBadPatch
		}
		return h.svc.ToggleActionItem(ctx, id, *req.ActionIndex)
	case "update_action_item":
		if req.ActionIndex == nil || req.Text == nil {
			return nil, errBadPatch
		}
		return h.svc.UpdateActionItem(ctx, id, *req.ActionIndex, *req.Text)
	case "delete_action_item":
		if req.ActionIndex == nil {
			return nil, errBadPatch
		}
		return h.svc.DeleteActionItem(ctx, id, *req.ActionIndex)
	case "":
		if req.UpdateCardRequest.Empty() {
			return nil, errBadPatch
		}
		return h.svc.UpdateFields(ctx, id, req.UpdateCardRequest)
	default:
		return nil, errBadPatch
	}
}

// DeleteMemory DELETE /memory/{id}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeCardError(w, err, "Failed to delete memory")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeCardError maps store errors onto the HTTP surface.
func writeCardError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "Memory not found")
	case errors.Is(err, model.ErrInvalidIndex):
		respond.WriteBadRequest(w, "Invalid action item index")
	case errors.Is(err, errBadPatch):
		respond.WriteBadRequest(w, "Invalid request body")
	default:
		respond.WriteInternalError(w, fallback, err.Error())
	}
}
