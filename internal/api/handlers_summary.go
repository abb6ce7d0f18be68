package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/meetbrief/meetbrief/internal/api/respond"
	"github.com/meetbrief/meetbrief/internal/api/validate"
	"github.com/meetbrief/meetbrief/internal/auth"
	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/services"
)

type SummaryHandler struct {
	svc        *services.SummaryService
	authorizer auth.Authorizer
}

func NewSummaryHandler(svc *services.SummaryService, authorizer auth.Authorizer) *SummaryHandler {
	return &SummaryHandler{svc: svc, authorizer: authorizer}
}

// writeServiceError maps service failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "Summary not found")
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// CreateSummary POST /api/summaries
func (h *SummaryHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.create", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	var req struct {
		Title        string `json:"title"`
		OriginalText string `json:"originalText"`
		Instruction  string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.NonEmpty("originalText", req.OriginalText); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.NonEmpty("instruction", req.Instruction); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.CreateFromGeneration(r.Context(), actorInfo.ActorID, req.Title, req.OriginalText, req.Instruction)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListSummaries GET /api/summaries
func (h *SummaryHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.read", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	out, err := h.svc.List(r.Context(), actorInfo.ActorID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out == nil {
		out = []*model.Summary{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"summaries": out, "count": len(out)})
}

// GetSummary GET /api/summaries/{summaryId}
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.read", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	v := mux.Vars(r)
	out, err := h.svc.Get(r.Context(), actorInfo.ActorID, v["summaryId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateSummary PUT /api/summaries/{summaryId}
func (h *SummaryHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.write", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	var req struct {
		EditedSummary string   `json:"editedSummary"`
		Title         *string  `json:"title,omitempty"`
		Tags          []string `json:"tags,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Tags != nil {
		if err := validate.Tags(req.Tags); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	v := mux.Vars(r)
	out, err := h.svc.ApplyEdit(r.Context(), actorInfo.ActorID, v["summaryId"], services.EditRequest{
		EditedContent: req.EditedSummary,
		Title:         req.Title,
		Tags:          req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteSummary DELETE /api/summaries/{summaryId}
func (h *SummaryHandler) DeleteSummary(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.delete", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	v := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), actorInfo.ActorID, v["summaryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "Summary deleted successfully"})
}
