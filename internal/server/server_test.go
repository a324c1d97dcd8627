package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
)

const phishingText = "From: PayPal Security <alerts@secure-check.xyz>\r\n" +
	"Subject: Urgent: verify your account\r\n" +
	"\r\n" +
	"Act now: confirm your password at http://203.0.113.9/verify\r\n" +
	"or your account will be suspended immediately.\r\n"

// newTestServer builds a server backed by temp directories and the
// fallback model.
func newTestServer(t *testing.T) (*Server, *database.AnalysisDB) {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.NewConfig()
	cfg.ModelDir = t.TempDir()
	cfg.MaxUploadSize = config.DefaultMaxUploadSize

	predictor := classifier.NewPredictor(cfg.ModelDir, "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(cfg, predictor, db, logger), db
}

// doJSON performs a request with a JSON body and decodes the response
// into out.
func doJSON(t *testing.T, handler http.Handler, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	handler := srv.Handler()

	var body map[string]any
	if code := doJSON(t, handler, http.MethodGet, "/api/health", nil, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["model_loaded"] != false {
		t.Errorf("model_loaded = %v, want false for fallback", body["model_loaded"])
	}
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	var body map[string]any
	if code := doJSON(t, srv.Handler(), http.MethodGet, "/api", nil, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	endpoints, ok := body["endpoints"].(map[string]any)
	if !ok || endpoints["analyze_text"] != "/api/v1/analyze/text" {
		t.Errorf("endpoints = %v", body["endpoints"])
	}
}

func TestAnalyzeText(t *testing.T) {
	t.Parallel()

	t.Run("flags phishing content", func(t *testing.T) {
		t.Parallel()

		srv, db := newTestServer(t)

		var body map[string]any
		code := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/analyze/text",
			map[string]any{"email_content": phishingText}, &body)
		if code != http.StatusOK {
			t.Fatalf("status = %d, body = %v", code, body)
		}
		if body["is_phishing"] != true {
			t.Errorf("is_phishing = %v", body["is_phishing"])
		}
		if body["analysis_id"] == "" || body["analysis_id"] == nil {
			t.Error("analysis_id missing")
		}
		if _, ok := body["risk_factors"].([]any); !ok {
			t.Errorf("risk_factors = %v, want array", body["risk_factors"])
		}

		// The analysis must land in history.
		entries, err := db.History(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("history entries = %d, want 1", len(entries))
		}
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		var body map[string]any
		code := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/analyze/text",
			map[string]any{"email_content": "   "}, &body)
		if code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", code)
		}
		if body["error"] != "Bad Request" {
			t.Errorf("error = %v", body["error"])
		}
		if body["path"] != "/api/v1/analyze/text" {
			t.Errorf("path = %v", body["path"])
		}
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/text",
			strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAnalyzeFile(t *testing.T) {
	t.Parallel()

	upload := func(t *testing.T, handler http.Handler, filename, content string) *httptest.ResponseRecorder {
		t.Helper()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
		if err := mw.Close(); err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/file", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("accepts eml upload", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		rec := upload(t, srv.Handler(), "suspicious.eml", phishingText)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["filename"] != "suspicious.eml" {
			t.Errorf("filename = %v", body["filename"])
		}
		if body["file_size"] != float64(len(phishingText)) {
			t.Errorf("file_size = %v", body["file_size"])
		}
		analysis, ok := body["analysis"].(map[string]any)
		if !ok || analysis["is_phishing"] != true {
			t.Errorf("analysis = %v", body["analysis"])
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		rec := upload(t, srv.Handler(), "payload.exe", "MZ")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects missing file field", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/file",
			strings.NewReader("no multipart here"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestModelInfo(t *testing.T) {
	t.Parallel()

	t.Run("404 without trained model", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		var body map[string]any
		code := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/models/info", nil, &body)
		if code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", code)
		}
	})

	t.Run("returns info for loaded model", func(t *testing.T) {
		t.Parallel()

		modelDir := t.TempDir()
		weights := `{"weights":[0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1],"bias":0}`
		if err := os.WriteFile(filepath.Join(modelDir, "model_20240101.json"), []byte(weights), 0o600); err != nil {
			t.Fatal(err)
		}

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })

		cfg := config.NewConfig()
		cfg.ModelDir = modelDir
		srv := New(cfg, classifier.NewPredictor(modelDir, ""), db,
			slog.New(slog.NewTextHandler(io.Discard, nil)))

		var body map[string]any
		code := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/models/info", nil, &body)
		if code != http.StatusOK {
			t.Fatalf("status = %d, body = %v", code, body)
		}
		if body["threshold"] != 0.5 {
			t.Errorf("threshold = %v", body["threshold"])
		}
		if body["has_feature_extractor"] != true {
			t.Errorf("has_feature_extractor = %v", body["has_feature_extractor"])
		}
	})
}

func TestModelsAvailable(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	var body struct {
		Models []map[string]any `json:"models"`
	}
	code := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/models/available", nil, &body)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.Models) != 0 {
		t.Errorf("models = %v, want empty", body.Models)
	}
}

func TestThresholdUpdate(t *testing.T) {
	t.Parallel()

	t.Run("valid threshold is applied", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		code := doJSON(t, srv.Handler(), http.MethodPut, "/api/v1/models/threshold",
			thresholdRequest{Threshold: 0.7}, nil)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := srv.predictor.Threshold(); got != 0.7 {
			t.Errorf("threshold = %v, want 0.7", got)
		}
	})

	t.Run("out of range threshold is rejected", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)
		var body map[string]any
		code := doJSON(t, srv.Handler(), http.MethodPut, "/api/v1/models/threshold",
			thresholdRequest{Threshold: 1.5}, &body)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})
}

func TestAnalyzeURLs(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t)

	var body struct {
		URLAnalyses []urlAnalysis `json:"url_analyses"`
	}
	code := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/urls/analyze",
		[]string{"http://bit.ly/claim", "https://example.com/docs", "http://192.168.1.1/login"},
		&body)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.URLAnalyses) != 3 {
		t.Fatalf("got %d analyses, want 3", len(body.URLAnalyses))
	}

	shortened := body.URLAnalyses[0]
	if !shortened.IsSuspicious || shortened.SafetyScore != 0.4 {
		t.Errorf("shortener analysis = %+v", shortened)
	}
	clean := body.URLAnalyses[1]
	if clean.IsSuspicious || clean.SafetyScore != 1.0 {
		t.Errorf("clean analysis = %+v", clean)
	}
	ipHosted := body.URLAnalyses[2]
	if !ipHosted.IsSuspicious || ipHosted.SafetyScore != 0.2 {
		t.Errorf("ip analysis = %+v", ipHosted)
	}

	// Suspicious URLs must be stored; the clean one must not.
	stored, err := db.URLs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored urls = %d, want 2", len(stored))
	}
}

func TestUnknownPathReturnsJSONError(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	var body map[string]any
	code := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/nope", nil, &body)
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if body["error"] != "Not Found" {
		t.Errorf("error = %v", body["error"])
	}
}
