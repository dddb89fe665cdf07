package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"falbackend/internal/storage"
)

type downloadRequest struct {
	URL string `json:"url"`
}

// Download fetches a remote asset into the served media directory so the
// front-end can offer a same-origin download link.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.error(w, http.StatusBadRequest, "url is required")
		return
	}

	httpReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, req.URL, nil)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid url")
		return
	}
	resp, err := a.HTTP.Do(httpReq)
	if err != nil {
		a.error(w, http.StatusBadGateway, "failed to download asset")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.error(w, http.StatusBadGateway, "failed to download asset")
		return
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.error(w, http.StatusBadGateway, "failed to download asset")
		return
	}

	name := storage.UniqueName("download", downloadExt(req.URL))
	key, err := a.Store.Write(r.Context(), name, data)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "failed to store asset")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"path":    key,
		"url":     "/media/" + key,
	})
}

func downloadExt(rawURL string) string {
	base := rawURL
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	if ext := path.Ext(base); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".bin"
}
