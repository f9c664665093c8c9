package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/brandhue/quiz"
	"github.com/julienschmidt/httprouter"
)

func newTestRouter(t *testing.T, cfg *Config) *httprouter.Router {
	t.Helper()

	catalog, err := quiz.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}

	errs := make(chan error, 64)
	t.Cleanup(func() {
		close(errs)
		for err := range errs {
			t.Errorf("handler error: %v", err)
		}
	})

	mux := httprouter.New()
	registerRoutes(cfg, mux, errs, catalog, quiz.DefaultRules())

	return mux
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestRoutes(t *testing.T) {
	mux := newTestRouter(t, &Config{port: 8080})

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/", http.StatusOK, "text/html", "Start a new game"},
		{"/healthz", http.StatusOK, "text/plain", "Ok"},
		{"/version", http.StatusOK, "text/plain", "brandhue v" + releaseVersion},
		{"/robots.txt", http.StatusOK, "text/plain", "GPTBot"},
		{"/favicons/favicon.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/favicons/missing.png", http.StatusNotFound, "", ""},
		{"/assets/brandhue/app.js", http.StatusOK, "text/javascript", "WebSocket"},
		{"/assets/brandhue/missing.js", http.StatusNotFound, "", ""},
		{"/api/rules", http.StatusOK, "application/json", `"breakpoints"`},
		{"/api/brands?family=purple", http.StatusBadRequest, "application/json", "purple"},
		{"/brandhue/Ab3dEf7h", http.StatusOK, "text/html", "app.js"},
		{"/brandhue/Ab3dEf7h/qr", http.StatusOK, "image/png", "PNG"},
	}

	for _, tt := range tests {
		w := get(mux, tt.path)

		if w.Code != tt.status {
			t.Errorf("GET %s: status %d, want %d", tt.path, w.Code, tt.status)
			continue
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
			t.Errorf("GET %s: content type %q, want %q", tt.path, ct, tt.contentType)
		}
		if !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("GET %s: body does not contain %q", tt.path, tt.contains)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	mux := newTestRouter(t, &Config{port: 8080, tlsCert: "cert.pem", tlsKey: "key.pem"})

	w := get(mux, "/healthz")

	for _, header := range []string{"Content-Security-Policy", "X-Content-Type-Options", "Strict-Transport-Security"} {
		if w.Header().Get(header) == "" {
			t.Errorf("missing %s header", header)
		}
	}
}

func TestServeBrands(t *testing.T) {
	mux := newTestRouter(t, &Config{port: 8080})

	catalog, _ := quiz.DefaultCatalog()

	var all []quiz.Brand
	if err := json.Unmarshal(get(mux, "/api/brands").Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != catalog.Len() {
		t.Errorf("got %d brands, want %d", len(all), catalog.Len())
	}

	var red []quiz.Brand
	if err := json.Unmarshal(get(mux, "/api/brands?family=red").Body.Bytes(), &red); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(red) == 0 || len(red) >= len(all) {
		t.Errorf("red family has %d of %d brands", len(red), len(all))
	}
	for _, b := range red {
		if !quiz.FamilyRed.Contains(b.Primary) {
			t.Errorf("%s (%s) is not red", b.ID, b.Primary)
		}
	}
}

func TestNewGameRedirect(t *testing.T) {
	mux := newTestRouter(t, &Config{port: 8080, prefix: "/games"})

	w := get(mux, "/games/brandhue")
	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/games/brandhue/") || len(strings.TrimPrefix(loc, "/games/brandhue/")) != 8 {
		t.Errorf("redirected to %q", loc)
	}
}

func TestGamePageSetsPlayerCookie(t *testing.T) {
	mux := newTestRouter(t, &Config{port: 8080})

	w := get(mux, "/brandhue/Ab3dEf7h")

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == playerCookieName && len(c.Value) == 32 {
			found = true
		}
	}
	if !found {
		t.Error("game page did not set a player cookie")
	}

	r := httptest.NewRequest(http.MethodGet, "/brandhue/Ab3dEf7h", nil)
	r.AddCookie(&http.Cookie{Name: playerCookieName, Value: "existing"})
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if len(w.Result().Cookies()) != 0 {
		t.Error("player cookie was replaced")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{port: 8080}, false},
		{"tls pair", Config{port: 443, tlsCert: "c", tlsKey: "k"}, false},
		{"cert only", Config{port: 443, tlsCert: "c"}, true},
		{"key only", Config{port: 443, tlsKey: "k"}, true},
		{"port zero", Config{port: 0}, true},
		{"port too high", Config{port: 65536}, true},
		{"negative timeout", Config{port: 8080, sessionTimeout: -time.Second}, true},
	}

	for _, tt := range tests {
		if err := tt.cfg.validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("BRANDHUE_PORT", "9090")
	t.Setenv("BRANDHUE_SESSION_TIMEOUT", "5m")
	t.Setenv("BRANDHUE_SEED", "12345")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.port)
	}
	if cfg.sessionTimeout != 5*time.Minute {
		t.Errorf("session timeout = %s, want 5m", cfg.sessionTimeout)
	}
	if cfg.seed != 12345 {
		t.Errorf("seed = %d, want 12345", cfg.seed)
	}
	if cfg.bind != "0.0.0.0" {
		t.Errorf("bind = %q, want the default", cfg.bind)
	}
}

func TestConfigLoadFiles(t *testing.T) {
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "brands.yaml")
	if err := os.WriteFile(catalogPath, []byte("- id: a\n  name: A\n  color: \"#CC0000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rulesPath, []byte("points_per_answer: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{catalog: catalogPath, rules: rulesPath}

	catalog, err := cfg.loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if catalog.Len() != 1 {
		t.Errorf("catalog has %d brands, want 1", catalog.Len())
	}

	rules, err := cfg.loadRules()
	if err != nil {
		t.Fatalf("loadRules: %v", err)
	}
	if rules.PointsPerAnswer != 50 {
		t.Errorf("points per answer = %d, want 50", rules.PointsPerAnswer)
	}

	badPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badPath, []byte("- id: a\n  name: A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg.catalog = badPath
	if _, err := cfg.loadCatalog(); err == nil || !strings.Contains(err.Error(), badPath) {
		t.Errorf("malformed catalog error = %v, want it to name %s", err, badPath)
	}

	empty := &Config{}
	if c, err := empty.loadCatalog(); err != nil || c.Len() == 0 {
		t.Errorf("default catalog: %v", err)
	}
	if r, err := empty.loadRules(); err != nil || r.PointsPerAnswer != quiz.DefaultRules().PointsPerAnswer {
		t.Errorf("default rules: %v", err)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1500, "1.5 kB"},
		{2_500_000, "2.5 MB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.bytes); got != tt.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestProfileRoutes(t *testing.T) {
	if w := get(newTestRouter(t, &Config{port: 8080}), "/pprof/heap"); w.Code != http.StatusNotFound {
		t.Errorf("pprof served without --profile: status %d", w.Code)
	}

	mux := newTestRouter(t, &Config{port: 8080, profile: true})

	for _, path := range []string{"/pprof/", "/pprof/heap", "/pprof/goroutine"} {
		if w := get(mux, path); w.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", path, w.Code)
		}
	}
}
