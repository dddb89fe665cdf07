package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"falbackend/internal/media"
	"falbackend/internal/storage"
)

func TestResultPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results/job-5" {
			t.Errorf("path = %q, want /results/job-5", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, upstream.URL+"/results"), nil)

	r := chi.NewRouter()
	r.Get("/result/{id}", app.Result)
	req := httptest.NewRequest(http.MethodGet, "/result/job-5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want upstream status echoed", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "processing") {
		t.Fatalf("body = %s, want upstream body passed through", rec.Body.String())
	}
}

func TestResultWrapsNonJSONUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream broke</html>"))
	}))
	defer upstream.Close()

	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, upstream.URL), nil)

	r := chi.NewRouter()
	r.Get("/result/{id}", app.Result)
	req := httptest.NewRequest(http.MethodGet, "/result/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 echoed", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("non-JSON upstream body must be wrapped as JSON: %v", err)
	}
	if resp["raw"] != "<html>upstream broke</html>" {
		t.Fatalf("raw = %q, original text lost", resp["raw"])
	}
}

func TestMergeDisabledReturns403(t *testing.T) {
	cfg := testConfig()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	merger := media.NewMerger(media.Options{Store: store, Enabled: false, Logger: zerolog.Nop()})
	app := newTestApp(t, cfg, testClient(cfg, ""), merger)

	body := `{"video_url":"https://x/v.mp4","audio_url":"https://x/a.mp3"}`
	req := httptest.NewRequest(http.MethodPost, "/merge-video-audio", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.Merge(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for the disabled feature", rec.Code)
	}
}

func TestMergeRequiresBothURLs(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, ""), media.NewMerger(media.Options{Enabled: true, Logger: zerolog.Nop()}))

	req := httptest.NewRequest(http.MethodPost, "/merge-video-audio", strings.NewReader(`{"video_url":"https://x/v.mp4"}`))
	rec := httptest.NewRecorder()
	app.Merge(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthReportsConfigFlags(t *testing.T) {
	cfg := testConfig()
	cfg.FastURL = "https://queue.fal.run/fast"
	app := newTestApp(t, cfg, testClient(cfg, ""), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.Health(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp["falKeyPresent"] != true {
		t.Fatalf("falKeyPresent = %v, want true", resp["falKeyPresent"])
	}
	if resp["fastConfigured"] != true {
		t.Fatalf("fastConfigured = %v, want true", resp["fastConfigured"])
	}
	if resp["qualityConfigured"] != false {
		t.Fatalf("qualityConfigured = %v, want false", resp["qualityConfigured"])
	}
	if resp["ok"] != false {
		t.Fatalf("ok = %v, want false while quality URL missing", resp["ok"])
	}
}

func TestVoicesNotConfigured(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, ""), nil)

	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	rec := httptest.NewRecorder()
	app.Voices(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownloadSavesAsset(t *testing.T) {
	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("asset bytes"))
	}))
	defer asset.Close()

	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, ""), nil)

	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(`{"url":"`+asset.URL+`/clip.mp4"}`))
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	path, _ := resp["path"].(string)
	if path == "" || !strings.HasSuffix(path, ".mp4") {
		t.Fatalf("path = %q, want saved .mp4 key", path)
	}
	data, err := os.ReadFile(filepath.Join(app.Store.BasePath(), path))
	if err != nil {
		t.Fatalf("read saved asset: %v", err)
	}
	if string(data) != "asset bytes" {
		t.Fatalf("saved content mismatch: %q", data)
	}
}

func TestDownloadRemoteFailure(t *testing.T) {
	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer asset.Close()

	cfg := testConfig()
	app := newTestApp(t, cfg, testClient(cfg, ""), nil)

	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(`{"url":"`+asset.URL+`/gone.mp4"}`))
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
