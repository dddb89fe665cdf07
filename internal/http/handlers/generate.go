package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"falbackend/internal/fal"
	"falbackend/internal/infra/metrics"
)

// GenerateFast submits to the fast-tier upstream.
func (a *App) GenerateFast(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, "fast", a.Cfg.FastURL, a.Cfg.FastModel)
}

// GenerateQuality submits to the quality-tier upstream.
func (a *App) GenerateQuality(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, "quality", a.Cfg.QualityURL, a.Cfg.QualityModel)
}

func (a *App) generate(w http.ResponseWriter, r *http.Request, tier, target, model string) {
	if target == "" {
		a.error(w, http.StatusInternalServerError, "Upstream URL missing")
		return
	}
	if !a.Cfg.HasFalCredentials() {
		a.error(w, http.StatusUnauthorized, "Upstream credentials missing")
		return
	}

	body, err := decodeOpaqueBody(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	outcome := a.Fal.Submit(r.Context(), target, model, body)
	if outcome.State == fal.OutcomePending && outcome.RequestID != "" {
		// The job was accepted with a trackable handle: poll inline before
		// answering, so fast jobs come back in one round trip.
		outcome = a.Fal.Poll(r.Context(), outcome.RequestID)
	}
	metrics.SubmissionsTotal.WithLabelValues(tier, outcomeLabel(outcome)).Inc()
	a.writeOutcome(w, outcome)
}

// writeOutcome maps an upstream outcome onto the client-facing response shape.
func (a *App) writeOutcome(w http.ResponseWriter, outcome fal.Outcome) {
	switch outcome.State {
	case fal.OutcomeReady:
		a.json(w, http.StatusOK, map[string]any{
			"success":   true,
			"video_url": outcome.URL,
			"payload":   outcome.Payload,
		})
	case fal.OutcomePending:
		resp := map[string]any{
			"success": true,
			"pending": true,
			"payload": outcome.Payload,
		}
		if outcome.RequestID != "" {
			resp["request_id"] = outcome.RequestID
		}
		a.json(w, http.StatusAccepted, resp)
	default:
		status := http.StatusBadGateway
		if outcome.Status == http.StatusUnauthorized {
			status = http.StatusUnauthorized
		}
		a.json(w, status, map[string]any{
			"success":         false,
			"error":           outcome.Message,
			"upstream_status": outcome.Status,
		})
	}
}

// decodeOpaqueBody reads an optional JSON object body. The submission payload
// is client-defined and passes through unmodified; an empty body means an
// empty object, anything unparseable is a client error.
func decodeOpaqueBody(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return body, nil
}

func outcomeLabel(outcome fal.Outcome) string {
	switch outcome.State {
	case fal.OutcomeReady:
		return "ready"
	case fal.OutcomePending:
		return "pending"
	default:
		return "failed"
	}
}
