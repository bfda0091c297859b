package handler

import (
	"encoding/json"
	"net/http"

	"teledrive-web/internal/authflow"
	"teledrive-web/internal/backend"
	"teledrive-web/internal/drive"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/internal/session"
	"teledrive-web/pkg/apierror"
)

const flowCookieName = "td_flow"

type AuthHandler struct {
	flows    *authflow.Store
	api      *backend.Client
	sessions *session.Manager
	views    *drive.Registry
	secure   bool
}

func NewAuthHandler(flows *authflow.Store, api *backend.Client, sessions *session.Manager, views *drive.Registry, secure bool) *AuthHandler {
	return &AuthHandler{flows: flows, api: api, sessions: sessions, views: views, secure: secure}
}

// SendCode starts (or restarts) a sign-in flow with a phone number.
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	// A fresh flow per phone submission: re-entering the phone step
	// always restarts sign-in from scratch.
	flowID, flow := h.flows.Begin()

	if err := flow.SubmitPhone(r.Context(), payload.Phone); err != nil {
		h.flows.Drop(flowID)
		writeError(w, err)
		return
	}

	h.setFlowCookie(w, flowID)
	writeSuccess(w, http.StatusOK, flow.State())
}

// CheckCode verifies the login code for the in-progress flow.
func (h *AuthHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CheckCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	flowID, flow, err := h.currentFlow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := flow.SubmitCode(r.Context(), payload.Code); err != nil {
		writeError(w, err)
		return
	}

	if err := h.finishIfAuthenticated(w, flowID, flow); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, flow.State())
}

// CheckPassword verifies the two-factor password.
func (h *AuthHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CheckPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	flowID, flow, err := h.currentFlow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := flow.SubmitPassword(r.Context(), payload.Password); err != nil {
		writeError(w, err)
		return
	}

	if err := h.finishIfAuthenticated(w, flowID, flow); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, flow.State())
}

// Back steps the flow to the previous sign-in stage.
func (h *AuthHandler) Back(w http.ResponseWriter, r *http.Request) {
	_, flow, err := h.currentFlow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flow.Back()
	writeSuccess(w, http.StatusOK, flow.State())
}

// State reports the sign-in state: the flow snapshot mid sign-in, or
// the authenticated stage when a session cookie is already present.
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionFromContext(r.Context()); token != "" {
		me, err := h.api.FetchMe(r.Context(), token)
		if err == nil && me.Authorized {
			writeSuccess(w, http.StatusOK, authflow.State{Stage: authflow.StageAuthenticated, Me: &me})
			return
		}
		// The backend no longer honors the session; drop the cookie so
		// the client lands back on the phone step.
		h.sessions.Clear(w)
	}

	if _, flow, err := h.currentFlow(r); err == nil {
		writeSuccess(w, http.StatusOK, flow.State())
		return
	}

	writeSuccess(w, http.StatusOK, authflow.State{Stage: authflow.StagePhone})
}

// Me returns the signed-in profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	me, err := h.api.FetchMe(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, me)
}

// Logout terminates the backend session. The cookie and the cached
// view are dropped even when the backend call fails; sign-out is
// best effort.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	_ = h.api.Logout(r.Context(), token)

	h.views.Drop(token)
	h.sessions.Clear(w)
	h.clearFlowCookie(w)

	writeSuccess(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// finishIfAuthenticated promotes a completed flow into a session
// cookie and discards the flow state.
func (h *AuthHandler) finishIfAuthenticated(w http.ResponseWriter, flowID string, flow *authflow.Flow) error {
	if flow.State().Stage != authflow.StageAuthenticated {
		return nil
	}

	if err := h.sessions.Issue(w, flow.Session()); err != nil {
		return err
	}
	h.flows.Drop(flowID)
	h.clearFlowCookie(w)
	return nil
}

func (h *AuthHandler) currentFlow(r *http.Request) (string, *authflow.Flow, error) {
	cookie, err := r.Cookie(flowCookieName)
	if err != nil || cookie.Value == "" {
		return "", nil, apierror.New("NO_FLOW", "no sign-in in progress", "", http.StatusBadRequest)
	}

	flow := h.flows.Get(cookie.Value)
	if flow == nil {
		return "", nil, apierror.New("NO_FLOW", "sign-in flow expired, start again", "", http.StatusBadRequest)
	}

	return cookie.Value, flow, nil
}

func (h *AuthHandler) setFlowCookie(w http.ResponseWriter, flowID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flowCookieName,
		Value:    flowID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearFlowCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     flowCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
