package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"falbackend/internal/storage"
)

// ErrMergeDisabled is returned when the merge feature flag is off. It is kept
// distinct from runtime failures so the handler can answer 403 rather than 5xx.
var ErrMergeDisabled = errors.New("media: merge is disabled")

// DownloadError reports a failed asset fetch. The encoder never ran.
type DownloadError struct {
	Role string // "video" or "audio"
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("media: download %s asset: %v", e.Role, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// EncoderLaunchError reports that the encoder process could not be started,
// typically because the binary is not installed.
type EncoderLaunchError struct {
	Err error
}

func (e *EncoderLaunchError) Error() string {
	return fmt.Sprintf("media: launch encoder: %v", e.Err)
}

func (e *EncoderLaunchError) Unwrap() error { return e.Err }

// EncoderExitError reports an encoder run that finished with a non-zero code.
type EncoderExitError struct {
	Code   int
	Detail string
}

func (e *EncoderExitError) Error() string {
	return fmt.Sprintf("media: encoder exited with code %d", e.Code)
}

// Options configures a Merger.
type Options struct {
	Store      *storage.FileStore
	Enabled    bool
	HTTPClient *http.Client
	Logger     zerolog.Logger
	// Encoder is the encoder binary; defaults to "ffmpeg".
	Encoder string
	// Timeout bounds one whole merge, downloads included. Defaults to ten
	// minutes.
	Timeout time.Duration
	// TempRoot overrides where input downloads are staged, for tests.
	TempRoot string
}

// Merger combines a remote video asset and a remote audio asset into one
// local file by invoking an external encoder.
type Merger struct {
	store      *storage.FileStore
	enabled    bool
	httpClient *http.Client
	logger     zerolog.Logger
	encoder    string
	timeout    time.Duration
	tempRoot   string
}

// NewMerger constructs a Merger with defaults applied.
func NewMerger(opts Options) *Merger {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	encoder := opts.Encoder
	if encoder == "" {
		encoder = "ffmpeg"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Merger{
		store:      opts.Store,
		enabled:    opts.Enabled,
		httpClient: httpClient,
		logger:     opts.Logger,
		encoder:    encoder,
		timeout:    timeout,
		tempRoot:   opts.TempRoot,
	}
}

// Merge downloads both assets, runs the encoder, and returns the name of the
// merged file inside the store. The video stream is reused as-is, the audio is
// re-encoded to AAC, and the output is truncated to the shorter input.
//
// Temporary downloads are removed on every exit path; cleanup failures are
// logged and never change the outcome.
func (m *Merger) Merge(ctx context.Context, videoURL, audioURL string) (string, error) {
	if !m.enabled {
		return "", ErrMergeDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp(m.tempRoot, "merge-")
	if err != nil {
		return "", fmt.Errorf("media: create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			m.logger.Warn().Err(err).Str("dir", tmpDir).Msg("media: temp cleanup failed")
		}
	}()

	videoPath := filepath.Join(tmpDir, "video_input.mp4")
	if err := m.download(ctx, videoURL, videoPath); err != nil {
		return "", &DownloadError{Role: "video", Err: err}
	}
	audioPath := filepath.Join(tmpDir, "audio_input.mp3")
	if err := m.download(ctx, audioURL, audioPath); err != nil {
		return "", &DownloadError{Role: "audio", Err: err}
	}

	name := storage.UniqueName("merged", ".mp4")
	outPath := filepath.Join(m.store.BasePath(), name)

	cmd := exec.CommandContext(ctx, m.encoder,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return "", &EncoderLaunchError{Err: err}
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &EncoderExitError{Code: exitErr.ExitCode(), Detail: tail(stderr.String(), 512)}
		}
		return "", &EncoderLaunchError{Err: err}
	}

	m.logger.Info().Str("output", name).Msg("media: merge complete")
	return name, nil
}

func (m *Merger) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
