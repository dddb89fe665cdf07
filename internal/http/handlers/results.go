package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Result is the single-shot result passthrough. The front-end owns the job
// handle and re-polls here at its own pace after the inline poll loop gave up.
func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	if !a.Cfg.HasFalCredentials() {
		a.error(w, http.StatusUnauthorized, "Upstream credentials missing")
		return
	}
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		a.error(w, http.StatusBadRequest, "request id required")
		return
	}
	resp, err := a.Fal.FetchResult(r.Context(), requestID)
	if err != nil {
		a.error(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Payload())
}

// Voices forwards the upstream voice listing untouched.
func (a *App) Voices(w http.ResponseWriter, r *http.Request) {
	if a.Cfg.VoicesURL == "" {
		a.error(w, http.StatusNotFound, "voice listing not configured")
		return
	}
	if !a.Cfg.HasFalCredentials() {
		a.error(w, http.StatusUnauthorized, "Upstream credentials missing")
		return
	}
	resp, err := a.Fal.Passthrough(r.Context(), a.Cfg.VoicesURL)
	if err != nil {
		a.error(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Payload())
}
