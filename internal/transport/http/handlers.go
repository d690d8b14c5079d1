package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-regwizard/internal/session"
	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/draft"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

const maxBodyBytes = 1 << 20

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot wizard.Snapshot `json:"snapshot"`
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

type fieldsRequest struct {
	Fields map[model.FieldKey]string `json:"fields"`
}

type selectionRequest struct {
	Field model.FieldKey `json:"field"`
	Value string         `json:"value"`
}

type selectionResponse struct {
	Selected bool            `json:"selected"`
	Snapshot wizard.Snapshot `json:"snapshot"`
}

type termsRequest struct {
	Agreed bool `json:"agreed"`
}

type attachmentsRequest struct {
	Files []attachment.Candidate `json:"files"`
}

type attachmentsResponse struct {
	Accepted []model.Attachment     `json:"accepted"`
	Rejected []attachment.Rejection `json:"rejected"`
	Snapshot wizard.Snapshot        `json:"snapshot"`
}

type submitResponse struct {
	ConfirmationID string          `json:"confirmationId"`
	Snapshot       wizard.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	Snapshot *wizard.Snapshot `json:"snapshot,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, _ *http.Request) {
	id, c, err := h.sessions.Create()
	if err != nil {
		h.logger.Error().Err(err).Msg("http: create session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "could not start a registration"})
		return
	}
	w.Header().Set("Location", "/registrations/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: c.Snapshot()})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: c.Snapshot()})
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRole(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, id, c, c.SelectRole(req.Role))
}

func (h *Handler) handleFields(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req fieldsRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, id, c, c.SetFields(req.Fields))
}

func (h *Handler) handleSelection(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if !decode(w, r, &req) {
		return
	}
	selected, err := c.ToggleMember(req.Field, req.Value)
	if err != nil {
		h.writeError(w, err, c)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Selected: selected, Snapshot: c.Snapshot()})
}

func (h *Handler) handleTerms(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req termsRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, id, c, c.SetAgreedToTerms(req.Agreed))
}

func (h *Handler) handleAddAttachments(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req attachmentsRequest
	if !decode(w, r, &req) {
		return
	}
	accepted, rejected, err := c.AddAttachments(req.Files)
	if err != nil {
		h.writeError(w, err, c)
		return
	}
	if accepted == nil {
		accepted = []model.Attachment{}
	}
	if rejected == nil {
		rejected = []attachment.Rejection{}
	}
	writeJSON(w, http.StatusOK, attachmentsResponse{Accepted: accepted, Rejected: rejected, Snapshot: c.Snapshot()})
}

func (h *Handler) handleRemoveAttachment(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "attachment index must be an integer"})
		return
	}
	h.respond(w, id, c, c.RemoveAttachment(index))
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, id, c, c.Advance())
}

func (h *Handler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, id, c, c.Retreat())
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	receipt, err := c.Submit(r.Context())
	if err != nil {
		h.writeError(w, err, c)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{ConfirmationID: receipt.ConfirmationID, Snapshot: c.Snapshot()})
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (string, *wizard.Controller, bool) {
	id := chi.URLParam(r, "id")
	c, err := h.sessions.Get(id)
	if err != nil {
		h.writeError(w, err, nil)
		return "", nil, false
	}
	return id, c, true
}

func (h *Handler) respond(w http.ResponseWriter, id string, c *wizard.Controller, err error) {
	if err != nil {
		h.writeError(w, err, c)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: c.Snapshot()})
}

// writeError centralizes the wizard error taxonomy translation. When a
// controller is given the response carries its snapshot so clients can show
// the recorded field errors.
func (h *Handler) writeError(w http.ResponseWriter, err error, c *wizard.Controller) {
	status, code := classify(err)
	resp := errorResponse{Error: code, Message: err.Error()}
	if c != nil {
		snap := c.Snapshot()
		resp.Snapshot = &snap
	}
	if status >= http.StatusInternalServerError {
		h.logger.Warn().Err(err).Int("status", status).Msg("http: intent failed")
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, draft.ErrIndexOutOfRange):
		return http.StatusNotFound, "attachment_not_found"
	case errors.Is(err, wizard.ErrGuardFailed):
		return http.StatusUnprocessableEntity, "guard_failed"
	case errors.Is(err, submission.ErrValidationFailed):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		return http.StatusConflict, "submission_in_flight"
	case errors.Is(err, wizard.ErrNotAtFinalStep):
		return http.StatusConflict, "not_at_final_step"
	case errors.Is(err, wizard.ErrCompleted):
		return http.StatusGone, "completed"
	case errors.Is(err, submission.ErrSubmissionFailed):
		return http.StatusBadGateway, "submission_failed"
	case errors.Is(err, wizard.ErrInvalidRole),
		errors.Is(err, draft.ErrUnknownField),
		errors.Is(err, draft.ErrNotASet),
		errors.Is(err, draft.ErrAttachmentsNotAllowed):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
