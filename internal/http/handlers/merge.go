package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"falbackend/internal/infra/metrics"
	"falbackend/internal/media"
)

type mergeRequest struct {
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
}

// Merge combines a separately generated video and audio asset into one served
// file. The pipeline's failure domains map onto distinct statuses so the
// front-end can tell a bad asset URL from a broken encoder.
func (a *App) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.VideoURL == "" || req.AudioURL == "" {
		a.error(w, http.StatusBadRequest, "video_url and audio_url are required")
		return
	}

	start := time.Now()
	name, err := a.Merger.Merge(r.Context(), req.VideoURL, req.AudioURL)
	if err != nil {
		metrics.MergesTotal.WithLabelValues(mergeResultLabel(err)).Inc()
		a.writeMergeError(w, err)
		return
	}
	metrics.MergesTotal.WithLabelValues("success").Inc()
	metrics.MergeDuration.Observe(time.Since(start).Seconds())
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"video_url": "/media/" + name,
		"path":      name,
	})
}

func (a *App) writeMergeError(w http.ResponseWriter, err error) {
	var downloadErr *media.DownloadError
	var launchErr *media.EncoderLaunchError
	var exitErr *media.EncoderExitError
	switch {
	case errors.Is(err, media.ErrMergeDisabled):
		a.error(w, http.StatusForbidden, "merge feature is disabled")
	case errors.As(err, &downloadErr):
		a.error(w, http.StatusBadGateway, fmt.Sprintf("failed to download %s asset", downloadErr.Role))
	case errors.As(err, &launchErr):
		a.error(w, http.StatusInternalServerError, "encoder could not be started")
	case errors.As(err, &exitErr):
		a.error(w, http.StatusInternalServerError, fmt.Sprintf("encoder failed with exit code %d", exitErr.Code))
	default:
		a.error(w, http.StatusInternalServerError, err.Error())
	}
}

func mergeResultLabel(err error) string {
	var downloadErr *media.DownloadError
	var launchErr *media.EncoderLaunchError
	var exitErr *media.EncoderExitError
	switch {
	case errors.Is(err, media.ErrMergeDisabled):
		return "disabled"
	case errors.As(err, &downloadErr):
		return "download_error"
	case errors.As(err, &launchErr):
		return "encoder_launch_error"
	case errors.As(err, &exitErr):
		return "encoder_exit_error"
	default:
		return "error"
	}
}
