package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	t.Run("logs status and level", func(t *testing.T) {
		var buf bytes.Buffer
		log := zerolog.New(&buf)

		handler := middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/price/AAPL", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
		}
		if entry["level"] != "warn" {
			t.Errorf("Expected warn level for 404, got %v", entry["level"])
		}
		if entry["status"] != float64(http.StatusNotFound) {
			t.Errorf("Expected status 404, got %v", entry["status"])
		}
		if entry["path"] != "/api/price/AAPL" {
			t.Errorf("Expected path to be logged, got %v", entry["path"])
		}
	})

	t.Run("strips newlines from path", func(t *testing.T) {
		var buf bytes.Buffer
		log := zerolog.New(&buf)

		handler := middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.URL.Path = "/ok\nforged"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to decode log line: %v", err)
		}
		if entry["path"] != "/okforged" {
			t.Errorf("Expected sanitized path, got %v", entry["path"])
		}
		if entry["level"] != "info" {
			t.Errorf("Expected info level, got %v", entry["level"])
		}
	})
}
