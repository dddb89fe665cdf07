package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"falbackend/internal/fal"
	"falbackend/internal/infra"
	"falbackend/internal/media"
	"falbackend/internal/storage"
)

// App is the handler container. Every dependency is injected at startup, there
// is no shared mutable state between requests.
type App struct {
	Cfg    *infra.Config
	Fal    *fal.Client
	Merger *media.Merger
	Store  *storage.FileStore
	HTTP   *http.Client
	Logger zerolog.Logger
}

// NewApp wires the handler container.
func NewApp(cfg *infra.Config, client *fal.Client, merger *media.Merger, store *storage.FileStore, logger zerolog.Logger) *App {
	return &App{
		Cfg:    cfg,
		Fal:    client,
		Merger: merger,
		Store:  store,
		HTTP:   &http.Client{},
		Logger: logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "error": message})
}
