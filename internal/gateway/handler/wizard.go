package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hookforge/internal/gateway/repository/session"
	"hookforge/internal/gateway/service/wizard"
	"hookforge/internal/token"
)

// WizardHandler serves the JSON API used by the wizard front end.
type WizardHandler struct {
	svc *wizard.Service
	log *zap.Logger
}

func NewWizardHandler(svc *wizard.Service, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{svc: svc, log: logger}
}

// Register mounts the wizard routes on mux.
func (h *WizardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.HandleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDelete)
	mux.HandleFunc("PATCH /api/sessions/{id}/config", h.HandleUpdate)
	mux.HandleFunc("PUT /api/sessions/{id}/icon", h.HandleSetIcon)
	mux.HandleFunc("DELETE /api/sessions/{id}/icon", h.HandleClearIcon)
	mux.HandleFunc("PUT /api/sessions/{id}/step", h.HandleSetStep)
	mux.HandleFunc("POST /api/sessions/{id}/generate", h.HandleGenerate)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.HandleReset)
	mux.HandleFunc("POST /api/sessions/{id}/export", h.HandleExport)
	mux.HandleFunc("GET /api/sessions/{id}/watch", h.HandleWatch)
	mux.HandleFunc("GET /api/exports/{export}", h.HandleLookupExport)
	mux.HandleFunc("GET /api/exports/{export}/{path...}", h.HandleReadExport)
}

func (h *WizardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.svc.Create(r.Context()))
}

func (h *WizardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *WizardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WizardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch token.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	sess, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleSetIcon takes the raw image bytes as the request body.
func (h *WizardHandler) HandleSetIcon(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, token.MaxIconBytes+1))
	if err != nil {
		writeBadRequest(w, "could not read icon")
		return
	}
	sess, err := h.svc.SetIcon(r.Context(), r.PathValue("id"), data)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, err, nil)
			return
		}
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *WizardHandler) HandleClearIcon(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ClearIcon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *WizardHandler) HandleSetStep(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Step session.Step `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	sess, err := h.svc.SetStep(r.Context(), r.PathValue("id"), in.Step)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleGenerate blocks for the single completion request. A failed run
// still returns the session so the client can show the stored message.
func (h *WizardHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	sess, err := h.svc.Generate(r.Context(), id)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusBadGateway {
			writeError(w, err, &sess)
			return
		}
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *WizardHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *WizardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		h.log.Warn("export failed", zap.String("session", r.PathValue("id")), zap.Error(err))
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *WizardHandler) HandleLookupExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.LookupExport(r.Context(), r.PathValue("export"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *WizardHandler) HandleReadExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ReadExport(r.Context(), r.PathValue("export"), r.PathValue("path"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}
