package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dayboard/dayboard/internal/api/respond"
	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/services"
)

// ContentHandler serves the daily content and archive endpoints.
type ContentHandler struct {
	svc *services.DashboardService
}

func NewContentHandler(svc *services.DashboardService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// notReadyResponse tells the UI when to come back without it re-deriving
// gate policy.
type notReadyResponse struct {
	Status    string `json:"status"`
	UnlocksAt string `json:"unlocksAt"`
}

func parseContentVars(r *http.Request) (scope string, ct model.ContentType, date model.Date, err error) {
	vars := mux.Vars(r)
	scope = vars["userId"]
	if scope == "" {
		err = errors.New("userId required")
		return
	}
	ct, err = model.ParseContentType(vars["contentType"])
	if err != nil {
		return
	}
	date, err = model.ParseDate(vars["date"])
	return
}

// GetContent handles GET /api/users/{userId}/content/{contentType}/{date}.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	scope, ct, date, err := parseContentVars(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	rec, err := h.svc.GetContent(r.Context(), scope, ct, date)
	h.writeContentResult(w, rec, err)
}

// RegenerateContent handles POST .../regenerate, the explicit manual
// overwrite path.
func (h *ContentHandler) RegenerateContent(w http.ResponseWriter, r *http.Request) {
	scope, ct, date, err := parseContentVars(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	rec, err := h.svc.RegenerateContent(r.Context(), scope, ct, date)
	h.writeContentResult(w, rec, err)
}

func (h *ContentHandler) writeContentResult(w http.ResponseWriter, rec *model.ContentRecord, err error) {
	if err == nil {
		respond.WriteJSON(w, http.StatusOK, rec)
		return
	}
	var notReady *model.NotReadyError
	if errors.As(err, &notReady) {
		respond.WriteJSON(w, http.StatusTooEarly, notReadyResponse{
			Status:    "not-ready",
			UnlocksAt: notReady.UnlocksAt.Format(time.RFC3339),
		})
		return
	}
	var genErr *model.GenerationError
	if errors.As(err, &genErr) {
		respond.WriteRetryableError(w, http.StatusBadGateway, genErr.Reason)
		return
	}
	if errors.Is(err, model.ErrValidation) {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteInternalError(w, "content unavailable, try again")
}

// GetArchive handles GET /api/users/{userId}/archives/{date}.
func (h *ContentHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scope := vars["userId"]
	if scope == "" {
		respond.WriteBadRequest(w, "userId required")
		return
	}
	date, err := model.ParseDate(vars["date"])
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ar, err := h.svc.GetArchive(r.Context(), scope, date)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "no archive for date")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, ar)
}
