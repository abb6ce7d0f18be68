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

type ShareHandler struct {
	summarySvc *services.SummaryService
	shareSvc   *services.ShareService
	authorizer auth.Authorizer
}

func NewShareHandler(summarySvc *services.SummaryService, shareSvc *services.ShareService, authorizer auth.Authorizer) *ShareHandler {
	return &ShareHandler{summarySvc: summarySvc, shareSvc: shareSvc, authorizer: authorizer}
}

// ShareSummary POST /api/summaries/{summaryId}/share
func (h *ShareHandler) ShareSummary(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "summary.share", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	var req struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject,omitempty"`
		Message    string   `json:"message,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Recipients(req.Recipients); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	v := mux.Vars(r)
	sum, err := h.summarySvc.Get(r.Context(), actorInfo.ActorID, v["summaryId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sharer := services.Sharer{Name: actorInfo.DisplayName, Email: actorInfo.Email}
	report, err := h.shareSvc.Share(r.Context(), sum, sharer, services.ShareRequest{
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Message:    req.Message,
	})
	if err != nil {
		if errors.Is(err, model.ErrAllDeliveriesFailed) {
			respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":  "All deliveries failed",
				"report": report,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Summary shared successfully",
		"recipientsCount": len(req.Recipients),
		"report":          report,
	})
}

// SendTestMail POST /api/mail/test
// Delivers a configuration test email to the caller's own address.
func (h *ShareHandler) SendTestMail(w http.ResponseWriter, r *http.Request) {
	// Extract API key from Authorization header
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	// Authorize the request
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "mail.test", "default")
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	sharer := services.Sharer{Name: actorInfo.DisplayName, Email: actorInfo.Email}
	if err := h.shareSvc.SendTest(r.Context(), sharer); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Test email sent to " + actorInfo.Email,
	})
}
