package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcosvidal/carniceria-go/internal"
)

func bindConfig(t *testing.T, primaryURL string) *internal.Config {
	t.Helper()
	var cfg internal.Config
	cfg.Store.PrimaryURL = primaryURL
	cfg.Store.PrimaryKey = "test-key"
	cfg.Store.FallbackPath = filepath.Join(t.TempDir(), "fallback.db")
	cfg.Store.PreferPrimary = true
	cfg.Store.TimeoutSeconds = 2
	cfg.Accounting.Timezone = "UTC"
	return &cfg
}

func TestBind_FallbackOnly(t *testing.T) {
	cfg := bindConfig(t, "")

	binding, err := Bind(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer binding.Close()

	if !strings.HasPrefix(binding.Store().Name(), "sqlite:") {
		t.Errorf("Store().Name() = %q, want sqlite backend", binding.Store().Name())
	}
	// No primary configured means fallback is the normal mode, not degraded.
	if binding.Degraded() {
		t.Error("Degraded() = true without a configured primary")
	}

	if err := binding.ForcePrimary(); err == nil {
		t.Error("ForcePrimary() without a primary should fail")
	}
}

func TestBind_PrimaryHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	binding, err := Bind(context.Background(), bindConfig(t, server.URL), nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer binding.Close()

	if !strings.HasPrefix(binding.Store().Name(), "rest:") {
		t.Errorf("Store().Name() = %q, want rest backend", binding.Store().Name())
	}
	if binding.Degraded() {
		t.Error("Degraded() = true with a healthy primary")
	}
}

func TestBind_PrimaryUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "service unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	binding, err := Bind(context.Background(), bindConfig(t, server.URL), nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer binding.Close()

	if !strings.HasPrefix(binding.Store().Name(), "sqlite:") {
		t.Errorf("Store().Name() = %q, want sqlite fallback", binding.Store().Name())
	}
	if !binding.Degraded() {
		t.Error("Degraded() = false after the primary probe failed")
	}

	// The binding stays on the fallback for the session even if the primary
	// recovers; only an explicit force rebinds.
	if err := binding.ForcePrimary(); err != nil {
		t.Fatalf("ForcePrimary() error = %v", err)
	}
	if !strings.HasPrefix(binding.Store().Name(), "rest:") {
		t.Errorf("Store().Name() after ForcePrimary = %q, want rest backend", binding.Store().Name())
	}
	if binding.Degraded() {
		t.Error("Degraded() = true after ForcePrimary")
	}

	if err := binding.ForceFallback(); err != nil {
		t.Fatalf("ForceFallback() error = %v", err)
	}
	if !binding.Degraded() {
		t.Error("Degraded() = false after ForceFallback with a configured primary")
	}
}

func TestBind_PreferPrimaryDisabled(t *testing.T) {
	probed := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed = true
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := bindConfig(t, server.URL)
	cfg.Store.PreferPrimary = false

	binding, err := Bind(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer binding.Close()

	if probed {
		t.Error("Expected no primary probe with prefer_primary disabled")
	}
	if !strings.HasPrefix(binding.Store().Name(), "sqlite:") {
		t.Errorf("Store().Name() = %q, want sqlite fallback", binding.Store().Name())
	}
}
