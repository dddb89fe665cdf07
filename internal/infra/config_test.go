package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FAL_KEY_ID", "")
	t.Setenv("FAL_KEY_SECRET", "")
	t.Setenv("FAL_UPSTREAM_FAST", "")
	t.Setenv("FAL_UPSTREAM_QUALITY", "")
	t.Setenv("ENABLE_MERGE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CORSOrigin != "*" {
		t.Fatalf("CORSOrigin = %q, want *", cfg.CORSOrigin)
	}
	if cfg.SubmitTimeout != 120*time.Second {
		t.Fatalf("SubmitTimeout = %v, want 120s", cfg.SubmitTimeout)
	}
	if cfg.MergeEnabled {
		t.Fatalf("MergeEnabled should default to false")
	}
	if cfg.HasFalCredentials() {
		t.Fatalf("HasFalCredentials should be false without keys")
	}
	if cfg.UpstreamConfigured() {
		t.Fatalf("UpstreamConfigured should be false without keys and URLs")
	}
}

func TestLoadConfigTrimsTrailingSlashes(t *testing.T) {
	t.Setenv("FAL_UPSTREAM_FAST", "https://queue.fal.run/fast/")
	t.Setenv("FAL_RESULT_BASE", "https://queue.fal.run/results/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FastURL != "https://queue.fal.run/fast" {
		t.Fatalf("FastURL = %q, trailing slash not trimmed", cfg.FastURL)
	}
	if cfg.ResultBase != "https://queue.fal.run/results" {
		t.Fatalf("ResultBase = %q, trailing slash not trimmed", cfg.ResultBase)
	}
}

func TestLoadConfigCredentialsByScheme(t *testing.T) {
	t.Setenv("FAL_KEY_ID", "kid")
	t.Setenv("FAL_KEY_SECRET", "")
	t.Setenv("FAL_AUTH_SCHEME", "bearer")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.HasFalCredentials() {
		t.Fatalf("bearer scheme should only require the key id")
	}

	t.Setenv("FAL_AUTH_SCHEME", "key")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HasFalCredentials() {
		t.Fatalf("key scheme requires both id and secret")
	}
}

func TestLoadConfigRejectsUnknownScheme(t *testing.T) {
	t.Setenv("FAL_AUTH_SCHEME", "digest")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown auth scheme")
	}
}
