package handlers

import (
	"net/http"
	"time"
)

// Health reports configuration readiness without leaking secrets. The flags
// mirror what the front-end needs to decide which features to show.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"ok":                a.Cfg.UpstreamConfigured(),
		"ts":                time.Now().UTC().Format(time.RFC3339),
		"falKeyPresent":     a.Cfg.HasFalCredentials(),
		"fastConfigured":    a.Cfg.FastURL != "",
		"qualityConfigured": a.Cfg.QualityURL != "",
		"mergeEnabled":      a.Cfg.MergeEnabled,
	})
}
