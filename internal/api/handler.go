package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"admin-welcome-modal/internal/engine"
	"admin-welcome-modal/internal/modal"
	"admin-welcome-modal/internal/session"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

type ModalHandler struct {
	Eng           *engine.ModalEngine
	Viewer        ViewerFunc
	SecureCookies bool
	Endpoints     modal.Endpoints
}

func NewModalHandler(eng *engine.ModalEngine, secureCookies bool) *ModalHandler {
	return &ModalHandler{
		Eng:           eng,
		Viewer:        HeaderViewer,
		SecureCookies: secureCookies,
		Endpoints:     modal.Endpoints{Events: "/v1/modal/events", Reset: "/v1/modal/reset"},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *ModalHandler) store(w http.ResponseWriter, r *http.Request) *session.Cookies {
	return session.NewCookies(w, r, h.SecureCookies)
}

// Decision reports eligibility and load-time visibility as JSON.
func (h *ModalHandler) Decision(w http.ResponseWriter, r *http.Request) {
	d := h.Eng.Decide(r.Context(), h.Viewer(r), h.store(w, r))
	writeJSON(w, http.StatusOK, d)
}

// Markup emits the modal fragment, or 204 when the viewer is ineligible.
func (h *ModalHandler) Markup(w http.ResponseWriter, r *http.Request) {
	markup, ok, err := h.Eng.Render(r.Context(), h.Viewer(r), h.store(w, r), h.Endpoints)
	if err != nil {
		log.Error().Err(err).Msg("render modal")
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeHTML(w, markup)
}

type eventRequest struct {
	Trigger     modal.Trigger `json:"trigger"`
	SessionHide bool          `json:"session_hide"`
}

// Event applies a close interaction and writes the dismissal cookies.
func (h *ModalHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if !req.Trigger.Valid() {
		writeError(w, http.StatusBadRequest, "unknown_trigger")
		return
	}
	res := h.Eng.HandleEvent(r.Context(), h.Viewer(r), h.store(w, r), req.Trigger, req.SessionHide)
	writeJSON(w, http.StatusOK, res)
}

// Reset clears both dismissal cookies.
func (h *ModalHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Eng.Reset(h.store(w, r))
	w.WriteHeader(http.StatusNoContent)
}

type settingsResponse struct {
	Options      modal.Options `json:"options"`
	KnownScreens []string      `json:"known_screens"`
}

func (h *ModalHandler) requirePrivilege(w http.ResponseWriter, r *http.Request) bool {
	if !h.Viewer(r).Privileged {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func (h *ModalHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrivilege(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Options: h.Eng.Settings(), KnownScreens: modal.KnownScreens})
}

func (h *ModalHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrivilege(w, r) {
		return
	}
	var in modal.Partial
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	res, err := h.Eng.UpdateSettings(r.Context(), in)
	if err != nil {
		log.Error().Err(err).Msg("update settings")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ModalHandler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrivilege(w, r) {
		return
	}
	if err := h.Eng.DeleteSettings(r.Context()); err != nil {
		log.Error().Err(err).Msg("delete settings")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview renders a draft for the settings screen without saving it.
func (h *ModalHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrivilege(w, r) {
		return
	}
	var draft modal.Partial
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	markup, err := h.Eng.Preview(draft)
	if err != nil {
		log.Error().Err(err).Msg("render preview")
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	writeHTML(w, markup)
}
