package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlerServesEmbeddedAssets(t *testing.T) {
	handler := Handler("")

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/", contains: "<!DOCTYPE html>"},
		{path: "/display.js", contains: "/api/v1/ws"},
		{path: "/style.css", contains: "#display"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, handler, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s: got status %d, want 200", tt.path, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("GET %s: body missing %q", tt.path, tt.contains)
			}
			if got := w.Header().Get("Cache-Control"); got != "no-cache, must-revalidate" {
				t.Errorf("GET %s: Cache-Control = %q", tt.path, got)
			}
		})
	}
}

func TestHandlerFallback(t *testing.T) {
	handler := Handler("")

	for _, p := range []string{"/nonexistent", "/some/deep/route", "/../../etc/passwd"} {
		w := get(t, handler, p)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got status %d, want 200", p, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Press Start to begin") {
			t.Errorf("GET %s: fallback didn't serve index.html", p)
		}
	}
}

func TestHandlerFilesystemMode(t *testing.T) {
	dir := t.TempDir()
	indexContent := `<!DOCTYPE html><html><body>filesystem display</body></html>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.js"), []byte("console.log('test')"), 0644); err != nil {
		t.Fatal(err)
	}

	handler := Handler(dir)

	if w := get(t, handler, "/"); !strings.Contains(w.Body.String(), "filesystem display") {
		t.Errorf("filesystem GET /: got %q", w.Body.String())
	}
	if w := get(t, handler, "/test.js"); w.Code != http.StatusOK {
		t.Errorf("filesystem GET /test.js: got status %d, want 200", w.Code)
	}
	if w := get(t, handler, "/deep/route"); !strings.Contains(w.Body.String(), "filesystem display") {
		t.Error("filesystem fallback didn't serve filesystem index.html")
	}
}

func TestHandlerInvalidDirFallsBackToEmbed(t *testing.T) {
	handler := Handler("/nonexistent/dir/that/does/not/exist")

	w := get(t, handler, "/")
	if w.Code != http.StatusOK {
		t.Errorf("invalid dir GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("invalid dir: didn't fall back to embedded index.html")
	}
}
